package metrics

// ErrorKind classifies why a request failed.
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindConnection ErrorKind = "connection"
	ErrorKindHTTP       ErrorKind = "http"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// Outcome is the record of a single dispatched request. It is produced
// exactly once per request and never mutated afterwards.
type Outcome struct {
	Endpoint  string    `json:"endpoint"`
	Success   bool      `json:"success"`
	Status    int       `json:"status,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	Kind      ErrorKind `json:"error_kind,omitempty"`
	Message   string    `json:"error,omitempty"`
}

// LatencyStats holds per-endpoint latency statistics in milliseconds.
// Per-run values come from integer millisecond samples; merged values may
// carry fractional parts from the reconstructed sample.
type LatencyStats struct {
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P90Ms float64 `json:"p90_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// EndpointMetrics is the aggregated view of one endpoint within one run
// (or across all runs after merging).
type EndpointMetrics struct {
	Endpoint       string       `json:"endpoint"`
	Total          int          `json:"total"`
	Successes      int          `json:"successes"`
	Failures       int          `json:"failures"`
	DurationMs     int64        `json:"duration_ms"`
	RequestsPerSec float64      `json:"requests_per_sec"`
	Latency        LatencyStats `json:"latency"`
}

// RunSummary captures one complete run: its metrics are sorted by endpoint
// name and always cover the full configured pool.
type RunSummary struct {
	ID         string            `json:"id"`
	Index      int               `json:"index"`
	DurationMs int64             `json:"duration_ms"`
	Metrics    []EndpointMetrics `json:"metrics"`
}

// GlobalSummary merges per-endpoint metrics across repeated runs.
type GlobalSummary struct {
	Runs       int               `json:"runs"`
	DurationMs int64             `json:"duration_ms"`
	Metrics    []EndpointMetrics `json:"metrics"`
}

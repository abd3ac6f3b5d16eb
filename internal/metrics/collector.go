package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records outcomes as they settle so progress reporters and the
// dashboard can show a live view mid-run. Its percentiles come from an
// HdrHistogram and are approximations; final report numbers are always
// recomputed exactly by Aggregate over the retained outcome slice.
type Collector struct {
	mu          sync.Mutex
	hist        *hdrhistogram.Histogram
	successes   int64
	failures    int64
	minLatency  int64
	maxLatency  int64
	sumLatency  int64
	byEndpoint  map[string]*endpointCounts
	byErrorKind map[ErrorKind]int64
	start       time.Time
}

type endpointCounts struct {
	total     int64
	successes int64
	failures  int64
}

// LiveStats is a snapshot of the collector state for live display.
type LiveStats struct {
	Total          int64
	Successes      int64
	Failures       int64
	RequestsPerSec float64
	MinLatencyMs   float64
	MaxLatencyMs   float64
	MeanLatencyMs  float64
	P50LatencyMs   float64
	P90LatencyMs   float64
	P99LatencyMs   float64
	Endpoints      map[string]EndpointCounts
	Errors         map[ErrorKind]int64
}

// EndpointCounts is the live per-endpoint tally.
type EndpointCounts struct {
	Total     int64
	Successes int64
	Failures  int64
}

func NewCollector() *Collector {
	// Track latencies from 1ms up to 10 minutes with 3 significant figures.
	return &Collector{
		hist:        hdrhistogram.New(1, 600_000, 3),
		byEndpoint:  make(map[string]*endpointCounts),
		byErrorKind: make(map[ErrorKind]int64),
		start:       time.Now(),
	}
}

// Start marks the beginning of the measured window for RPS computation.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Record registers a settled outcome.
func (c *Collector) Record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := o.LatencyMs
	if ms > 0 {
		v := ms
		if v < c.hist.LowestTrackableValue() {
			v = c.hist.LowestTrackableValue()
		}
		if v > c.hist.HighestTrackableValue() {
			v = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(v)
	}
	c.sumLatency += ms

	total := c.successes + c.failures
	if total == 0 || ms < c.minLatency {
		c.minLatency = ms
	}
	if ms > c.maxLatency {
		c.maxLatency = ms
	}

	ep, ok := c.byEndpoint[o.Endpoint]
	if !ok {
		ep = &endpointCounts{}
		c.byEndpoint[o.Endpoint] = ep
	}
	ep.total++

	if o.Success {
		c.successes++
		ep.successes++
	} else {
		c.failures++
		ep.failures++
		kind := o.Kind
		if kind == ErrorKindNone {
			kind = ErrorKindUnknown
		}
		c.byErrorKind[kind]++
	}
}

// Live returns a snapshot of the current counters.
func (c *Collector) Live() LiveStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	stats := LiveStats{
		Total:        total,
		Successes:    c.successes,
		Failures:     c.failures,
		MinLatencyMs: float64(c.minLatency),
		MaxLatencyMs: float64(c.maxLatency),
	}

	if total > 0 {
		stats.MeanLatencyMs = float64(c.sumLatency) / float64(total)
	}
	if c.hist.TotalCount() > 0 {
		stats.P50LatencyMs = float64(c.hist.ValueAtQuantile(50))
		stats.P90LatencyMs = float64(c.hist.ValueAtQuantile(90))
		stats.P99LatencyMs = float64(c.hist.ValueAtQuantile(99))
	}

	elapsed := time.Since(c.start)
	if elapsed > 0 && total > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}

	stats.Endpoints = make(map[string]EndpointCounts, len(c.byEndpoint))
	for name, ep := range c.byEndpoint {
		stats.Endpoints[name] = EndpointCounts{
			Total:     ep.total,
			Successes: ep.successes,
			Failures:  ep.failures,
		}
	}

	if len(c.byErrorKind) > 0 {
		stats.Errors = make(map[ErrorKind]int64, len(c.byErrorKind))
		for kind, count := range c.byErrorKind {
			stats.Errors[kind] = count
		}
	}

	return stats
}

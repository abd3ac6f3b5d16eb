package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/surgehq/surge/internal/metrics"
)

const (
	tableHeader = "%-24s %8s %8s %8s %10s %10s %12s %10s %10s\n"
	tableRow    = "%-24s %8d %8d %8d %10d %10.2f %12.2f %10.2f %10.2f\n"
)

// PrintRunReport outputs the fixed-width per-endpoint table for one run.
func PrintRunReport(w io.Writer, summary metrics.RunSummary) {
	fmt.Fprintf(w, "\n--- Run %d (%s, %dms) ---\n", summary.Index, summary.ID, summary.DurationMs)
	printTable(w, summary.Metrics)
}

// PrintGlobalReport outputs the merged summary across all runs.
func PrintGlobalReport(w io.Writer, global metrics.GlobalSummary) {
	fmt.Fprintf(w, "\n--- Merged Summary (%d runs, %dms) ---\n", global.Runs, global.DurationMs)
	printTable(w, global.Metrics)
}

func printTable(w io.Writer, rows []metrics.EndpointMetrics) {
	fmt.Fprintf(w, tableHeader,
		"endpoint", "total", "succ", "fail", "time(ms)", "thr/s", "avgLat(ms)", "p90(ms)", "p99(ms)")
	for _, em := range rows {
		fmt.Fprintf(w, tableRow,
			em.Endpoint,
			em.Total,
			em.Successes,
			em.Failures,
			em.DurationMs,
			em.RequestsPerSec,
			em.Latency.AvgMs,
			em.Latency.P90Ms,
			em.Latency.P99Ms,
		)
	}
}

// Result is the JSON-serializable report covering every run plus the merge.
type Result struct {
	Runs   []metrics.RunSummary  `json:"runs"`
	Global metrics.GlobalSummary `json:"global"`
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, result Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

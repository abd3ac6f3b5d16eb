package metrics_test

import (
	"testing"
	"time"

	"github.com/surgehq/surge/internal/metrics"
)

func runSummary(index int, durationMs int64, ems ...metrics.EndpointMetrics) metrics.RunSummary {
	return metrics.RunSummary{
		Index:      index,
		DurationMs: durationMs,
		Metrics:    ems,
	}
}

func TestMergeRecomputesThroughput(t *testing.T) {
	em := func(succ int) metrics.EndpointMetrics {
		return metrics.EndpointMetrics{
			Endpoint:  "/a",
			Total:     succ,
			Successes: succ,
			Latency:   metrics.LatencyStats{AvgMs: 10, MinMs: 10, MaxMs: 10, P50Ms: 10, P90Ms: 10, P99Ms: 10},
		}
	}

	global := metrics.Merge([]metrics.RunSummary{
		runSummary(1, 1000, em(5)),
		runSummary(2, 1000, em(5)),
	})

	if global.Runs != 2 {
		t.Errorf("runs = %d, want 2", global.Runs)
	}
	if global.DurationMs != 2000 {
		t.Errorf("duration = %d, want 2000", global.DurationMs)
	}
	if len(global.Metrics) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(global.Metrics))
	}
	a := global.Metrics[0]
	if a.Total != 10 || a.Successes != 10 {
		t.Errorf("counts = %d/%d, want 10/10", a.Total, a.Successes)
	}
	// 10 successes over 2 seconds.
	if a.RequestsPerSec != 5.0 {
		t.Errorf("merged throughput = %v, want 5.0", a.RequestsPerSec)
	}
}

func TestMergeReconstructsLatencyFromAverages(t *testing.T) {
	run1 := runSummary(1, 1000, metrics.EndpointMetrics{
		Endpoint:  "/a",
		Total:     2,
		Successes: 2,
		Latency:   metrics.LatencyStats{AvgMs: 10, MinMs: 5, MaxMs: 15, P50Ms: 10, P90Ms: 15, P99Ms: 15},
	})
	run2 := runSummary(2, 1000, metrics.EndpointMetrics{
		Endpoint:  "/a",
		Total:     2,
		Successes: 2,
		Latency:   metrics.LatencyStats{AvgMs: 30, MinMs: 20, MaxMs: 40, P50Ms: 30, P90Ms: 40, P99Ms: 40},
	})

	global := metrics.Merge([]metrics.RunSummary{run1, run2})
	lat := global.Metrics[0].Latency

	// Reconstructed sample is [10 10 30 30]: the per-run averages repeated,
	// not the true underlying values.
	if lat.MinMs != 10 {
		t.Errorf("min = %v, want 10 (reconstructed)", lat.MinMs)
	}
	if lat.MaxMs != 30 {
		t.Errorf("max = %v, want 30 (reconstructed)", lat.MaxMs)
	}
	if lat.AvgMs != 20 {
		t.Errorf("avg = %v, want 20", lat.AvgMs)
	}
	if lat.P50Ms != 10 {
		t.Errorf("p50 = %v, want 10", lat.P50Ms)
	}
	if lat.P99Ms != 30 {
		t.Errorf("p99 = %v, want 30", lat.P99Ms)
	}
}

func TestMergeKeepsZeroEndpoints(t *testing.T) {
	run1 := metrics.NewRunSummary(1, "", nil, 0, []string{"/a", "/b"})
	run2 := metrics.NewRunSummary(2, "", []metrics.Outcome{
		{Endpoint: "/a", Success: true, Status: 200, LatencyMs: 10},
	}, 500*time.Millisecond, []string{"/a", "/b"})

	global := metrics.Merge([]metrics.RunSummary{run1, run2})
	if len(global.Metrics) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(global.Metrics))
	}
	b := global.Metrics[1]
	if b.Endpoint != "/b" {
		t.Fatalf("expected /b second, got %s", b.Endpoint)
	}
	if b.Total != 0 || b.RequestsPerSec != 0 {
		t.Errorf("zero endpoint carries counts: %+v", b)
	}
}

func TestMergeEmpty(t *testing.T) {
	global := metrics.Merge(nil)
	if global.Runs != 0 || global.DurationMs != 0 || len(global.Metrics) != 0 {
		t.Errorf("merge of no runs should be empty, got %+v", global)
	}
}

package metrics

import (
	"math"
	"sort"
	"time"
)

// Aggregate groups outcomes by endpoint and computes per-endpoint statistics
// for a single run. Every endpoint in pool appears in the result, endpoints
// with no recorded outcomes included with all-zero metrics. The result is
// sorted by endpoint name in ascending codepoint order.
//
// Throughput deliberately uses the whole-run duration as a shared denominator
// for every endpoint in the run, not a per-endpoint duration.
func Aggregate(outcomes []Outcome, runDuration time.Duration, pool []string) []EndpointMetrics {
	groups := make(map[string][]Outcome)
	for _, o := range outcomes {
		groups[o.Endpoint] = append(groups[o.Endpoint], o)
	}

	seen := make(map[string]struct{}, len(pool))
	names := make([]string, 0, len(pool))
	for _, ep := range pool {
		if _, ok := seen[ep]; ok {
			continue
		}
		seen[ep] = struct{}{}
		names = append(names, ep)
	}
	for ep := range groups {
		if _, ok := seen[ep]; !ok {
			seen[ep] = struct{}{}
			names = append(names, ep)
		}
	}
	sort.Strings(names)

	durationMs := runDuration.Milliseconds()
	result := make([]EndpointMetrics, 0, len(names))
	for _, ep := range names {
		result = append(result, aggregateEndpoint(ep, groups[ep], durationMs))
	}
	return result
}

func aggregateEndpoint(endpoint string, group []Outcome, durationMs int64) EndpointMetrics {
	em := EndpointMetrics{
		Endpoint:   endpoint,
		Total:      len(group),
		DurationMs: durationMs,
	}
	if len(group) == 0 {
		return em
	}

	latencies := make([]float64, 0, len(group))
	var sum float64
	for _, o := range group {
		if o.Success {
			em.Successes++
		}
		v := float64(o.LatencyMs)
		latencies = append(latencies, v)
		sum += v
	}
	em.Failures = em.Total - em.Successes

	if durationMs > 0 {
		em.RequestsPerSec = round2(float64(em.Successes) / (float64(durationMs) / 1000))
	}

	sort.Float64s(latencies)
	em.Latency = LatencyStats{
		MinMs: latencies[0],
		MaxMs: latencies[len(latencies)-1],
		AvgMs: round2(sum / float64(len(latencies))),
		P50Ms: Percentile(latencies, 50),
		P90Ms: Percentile(latencies, 90),
		P99Ms: Percentile(latencies, 99),
	}
	return em
}

// NewRunSummary aggregates one run's outcomes into its summary.
func NewRunSummary(index int, id string, outcomes []Outcome, runDuration time.Duration, pool []string) RunSummary {
	return RunSummary{
		ID:         id,
		Index:      index,
		DurationMs: runDuration.Milliseconds(),
		Metrics:    Aggregate(outcomes, runDuration, pool),
	}
}

// Percentile returns the nearest-rank percentile of an ascending-sorted
// sample: index ceil(p/100*n)-1, clamped into [0, n-1]. An empty sample
// yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

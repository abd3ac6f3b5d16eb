package metrics

import "sort"

// Merge combines per-run summaries into a single global summary. Counts and
// durations are summed per endpoint; throughput is recomputed from the sums.
//
// Raw latency samples are not retained once a run is aggregated, so the merge
// reconstructs an approximate sample by repeating each run's per-endpoint
// average latency Total times. Min/max/percentiles over that sample are
// approximations, not exact order statistics of the underlying latencies.
func Merge(runs []RunSummary) GlobalSummary {
	var totalDurationMs int64
	merged := make(map[string]*EndpointMetrics)
	samples := make(map[string][]float64)

	for _, run := range runs {
		totalDurationMs += run.DurationMs
		for _, em := range run.Metrics {
			acc, ok := merged[em.Endpoint]
			if !ok {
				acc = &EndpointMetrics{Endpoint: em.Endpoint}
				merged[em.Endpoint] = acc
			}
			acc.Total += em.Total
			acc.Successes += em.Successes
			acc.Failures += em.Failures
			for i := 0; i < em.Total; i++ {
				samples[em.Endpoint] = append(samples[em.Endpoint], em.Latency.AvgMs)
			}
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]EndpointMetrics, 0, len(names))
	for _, name := range names {
		acc := merged[name]
		acc.DurationMs = totalDurationMs
		if totalDurationMs > 0 {
			acc.RequestsPerSec = round2(float64(acc.Successes) / (float64(totalDurationMs) / 1000))
		}
		if sample := samples[name]; len(sample) > 0 {
			sort.Float64s(sample)
			var sum float64
			for _, v := range sample {
				sum += v
			}
			acc.Latency = LatencyStats{
				MinMs: sample[0],
				MaxMs: sample[len(sample)-1],
				AvgMs: round2(sum / float64(len(sample))),
				P50Ms: Percentile(sample, 50),
				P90Ms: Percentile(sample, 90),
				P99Ms: Percentile(sample, 99),
			}
		}
		result = append(result, *acc)
	}

	return GlobalSummary{
		Runs:       len(runs),
		DurationMs: totalDurationMs,
		Metrics:    result,
	}
}

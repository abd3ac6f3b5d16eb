// Package metrics defines request outcomes and turns them into per-endpoint
// statistics.
//
// Two layers coexist here. The [Collector] is the live layer: it is fed as
// outcomes settle and serves approximate HdrHistogram percentiles to the
// progress line and the dashboard. The exact layer is [Aggregate], a pure
// function over the full outcome slice of a run, which computes nearest-rank
// percentiles, and [Merge], which folds repeated runs into one
// [GlobalSummary].
//
// # Aggregation
//
//	outcomes, elapsed := dispatcher.Run(ctx)
//	perEndpoint := metrics.Aggregate(outcomes, elapsed, cfg.Endpoints)
//
// Every configured endpoint appears in the result even when it received no
// traffic during the run; such entries carry all-zero metrics. Throughput is
// computed against the whole-run duration for every endpoint of that run.
//
// # Merging
//
// [Merge] sums counts and durations across runs and recomputes throughput
// from the sums. Latency percentiles of the merged view are computed over a
// reconstructed sample (each run's average repeated per request) because raw
// samples are discarded once a run is aggregated; see the Merge doc comment.
package metrics

// Package dispatch is the load-generation engine: it partitions a fixed
// request budget into concurrency-bounded batches and drives them against
// the endpoint pool.
//
// # Execution model
//
// A run walks a precompiled batch plan where every batch holds
// min(concurrency, remaining) requests. Requests within a batch run
// concurrently; batches are strictly sequential, separated by a barrier that
// waits for every in-flight request to settle. There is no run-wide
// cancellation: a run always completes its full budget, and individual
// failures (timeouts, connection errors, error statuses) are recorded as
// outcomes rather than propagated.
//
//	d := dispatch.New(dispatch.Options{
//		Concurrency:   8,
//		TotalRequests: 1000,
//		Executor:      exec,
//		Picker:        sel,
//	})
//	outcomes, elapsed := d.Run(ctx)
//
// # Pacing
//
// RatePerSecond optionally paces request launches with a token-bucket
// limiter. The limiter is awaited before each launch, on the dispatching
// goroutine, so it can stretch a batch out in time but never lets two
// batches overlap.
package dispatch

package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/surgehq/surge/internal/metrics"
)

// Dispatcher executes one run of the configured request budget in
// concurrency-bounded batches.
type Dispatcher struct {
	opt     Options
	plan    []int
	limiter *rate.Limiter
}

func New(opt Options) *Dispatcher {
	opt.normalize()
	return &Dispatcher{
		opt:     opt,
		plan:    batchPlan(opt.TotalRequests, opt.Concurrency),
		limiter: opt.LimiterFactory(opt.RatePerSecond),
	}
}

// Run dispatches the full budget and returns every outcome in dispatch order
// together with the wall-clock duration from the first batch's start to the
// last batch's completion. A zero budget returns an empty slice and zero
// duration.
//
// Batches are separated by a synchronization barrier: the next batch does not
// start until every request of the current batch has settled. A single slow
// request therefore delays the whole run (head-of-line blocking); that is the
// intended model, not a sliding window.
func (d *Dispatcher) Run(ctx context.Context) ([]metrics.Outcome, time.Duration) {
	if len(d.plan) == 0 {
		return nil, 0
	}

	outcomes := make([]metrics.Outcome, d.opt.TotalRequests)
	start := d.opt.now()
	limiter := d.limiter

	dispatched := 0
	for _, size := range d.plan {
		var wg sync.WaitGroup
		wg.Add(size)
		for i := 0; i < size; i++ {
			idx := dispatched + i
			plan := d.opt.Picker.Pick(idx)
			if limiter != nil {
				// Awaited serially so pacing never widens the batch.
				if err := limiter.Wait(ctx); err != nil {
					// Once the context is canceled there is nothing left to
					// pace; the remaining requests settle (failing fast)
					// unpaced.
					limiter = nil
				}
			}
			go func() {
				defer wg.Done()
				// Each goroutine owns exactly one slot; no locking needed.
				outcomes[idx] = d.opt.Executor.Execute(ctx, plan)
				if d.opt.Observer != nil {
					d.opt.Observer(outcomes[idx])
				}
			}()
		}
		wg.Wait()
		dispatched += size
	}

	return outcomes, d.opt.now().Sub(start)
}

package dispatch

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/surgehq/surge/internal/metrics"
	"github.com/surgehq/surge/internal/selector"
)

// Executor issues a single planned request and reports its outcome. A failed
// request is still a settled outcome, never an error.
type Executor interface {
	Execute(ctx context.Context, plan selector.Plan) metrics.Outcome
}

// Picker assigns an endpoint plan to the i-th request of a run.
type Picker interface {
	Pick(i int) selector.Plan
}

// Observer is notified as each outcome settles. Used to feed the live
// collector; may be nil.
type Observer func(metrics.Outcome)

// Options configure the Dispatcher.
type Options struct {
	Concurrency   int      // max requests in flight within one batch
	TotalRequests int      // request budget for one run
	RatePerSecond int      // optional launch pacing (0 means unpaced)
	Executor      Executor // request executor (required)
	Picker        Picker   // endpoint assignment (required)
	Observer      Observer // per-outcome callback, optional

	// LimiterFactory is injectable for tests.
	LimiterFactory func(rps int) *rate.Limiter
	// now is injectable for tests.
	now func() time.Time
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return nil
			}
			// Burst of 1 keeps launches evenly spaced.
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
	if o.now == nil {
		o.now = time.Now
	}
}

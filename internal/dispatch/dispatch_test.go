package dispatch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/surgehq/surge/internal/dispatch"
	"github.com/surgehq/surge/internal/metrics"
	"github.com/surgehq/surge/internal/selector"
)

// indexPicker hands out one distinct endpoint per request index so tests can
// identify individual requests.
type indexPicker struct {
	endpoints []string
}

func (p *indexPicker) Pick(i int) selector.Plan {
	return selector.Plan{Endpoint: p.endpoints[i%len(p.endpoints)], Method: "GET"}
}

// fakeExecutor simulates settling requests with per-endpoint latency.
type fakeExecutor struct {
	latency   map[string]time.Duration
	calls     int64
	inFlight  int64
	maxFlight int64

	mu      sync.Mutex
	started map[string]time.Time
	settled map[string]time.Time
}

func newFakeExecutor(latency map[string]time.Duration) *fakeExecutor {
	return &fakeExecutor{
		latency: latency,
		started: make(map[string]time.Time),
		settled: make(map[string]time.Time),
	}
}

func (f *fakeExecutor) Execute(ctx context.Context, plan selector.Plan) metrics.Outcome {
	atomic.AddInt64(&f.calls, 1)
	current := atomic.AddInt64(&f.inFlight, 1)
	for {
		high := atomic.LoadInt64(&f.maxFlight)
		if current <= high || atomic.CompareAndSwapInt64(&f.maxFlight, high, current) {
			break
		}
	}

	f.mu.Lock()
	f.started[plan.Endpoint] = time.Now()
	f.mu.Unlock()

	if d := f.latency[plan.Endpoint]; d > 0 {
		time.Sleep(d)
	}

	f.mu.Lock()
	f.settled[plan.Endpoint] = time.Now()
	f.mu.Unlock()

	atomic.AddInt64(&f.inFlight, -1)
	return metrics.Outcome{Endpoint: plan.Endpoint, Success: true, Status: 200, LatencyMs: 1}
}

func endpoints(n int) []string {
	eps := make([]string, n)
	for i := range eps {
		eps[i] = "/e" + string(rune('0'+i))
	}
	return eps
}

func TestDispatcherExecutesFullBudget(t *testing.T) {
	exec := newFakeExecutor(nil)
	d := dispatch.New(dispatch.Options{
		Concurrency:   3,
		TotalRequests: 10,
		Executor:      exec,
		Picker:        &indexPicker{endpoints: endpoints(10)},
	})

	outcomes, elapsed := d.Run(context.Background())
	if len(outcomes) != 10 {
		t.Fatalf("expected 10 outcomes, got %d", len(outcomes))
	}
	if exec.calls != 10 {
		t.Errorf("executor called %d times, want 10", exec.calls)
	}
	if elapsed <= 0 {
		t.Errorf("elapsed = %v, want > 0", elapsed)
	}
	for i, o := range outcomes {
		if o.Endpoint == "" {
			t.Errorf("outcome %d has no endpoint recorded", i)
		}
	}
}

func TestDispatcherRespectsConcurrencyLimit(t *testing.T) {
	latency := make(map[string]time.Duration)
	eps := endpoints(10)
	for _, ep := range eps {
		latency[ep] = 10 * time.Millisecond
	}
	exec := newFakeExecutor(latency)
	d := dispatch.New(dispatch.Options{
		Concurrency:   3,
		TotalRequests: 10,
		Executor:      exec,
		Picker:        &indexPicker{endpoints: eps},
	})

	d.Run(context.Background())
	if exec.maxFlight > 3 {
		t.Errorf("max in-flight = %d, want <= 3", exec.maxFlight)
	}
}

func TestDispatcherBatchBarrier(t *testing.T) {
	// /e0 is the slow member of the first batch; head-of-line blocking means
	// the second batch (/e3 onward) must not start before /e0 settles.
	eps := endpoints(6)
	exec := newFakeExecutor(map[string]time.Duration{
		"/e0": 60 * time.Millisecond,
	})
	d := dispatch.New(dispatch.Options{
		Concurrency:   3,
		TotalRequests: 6,
		Executor:      exec,
		Picker:        &indexPicker{endpoints: eps},
	})

	d.Run(context.Background())

	exec.mu.Lock()
	slowSettled := exec.settled["/e0"]
	nextStarted := exec.started["/e3"]
	exec.mu.Unlock()

	if slowSettled.IsZero() || nextStarted.IsZero() {
		t.Fatal("expected both /e0 and /e3 to run")
	}
	if nextStarted.Before(slowSettled) {
		t.Errorf("second batch started %v before the slow first-batch request settled", slowSettled.Sub(nextStarted))
	}
}

func TestDispatcherZeroBudget(t *testing.T) {
	exec := newFakeExecutor(nil)
	d := dispatch.New(dispatch.Options{
		Concurrency:   4,
		TotalRequests: 0,
		Executor:      exec,
		Picker:        &indexPicker{endpoints: endpoints(1)},
	})

	outcomes, elapsed := d.Run(context.Background())
	if len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
	if elapsed != 0 {
		t.Errorf("elapsed = %v, want 0", elapsed)
	}
	if exec.calls != 0 {
		t.Errorf("executor called %d times, want 0", exec.calls)
	}
}

// failingExecutor settles every request as a failure.
type failingExecutor struct {
	calls int64
}

func (f *failingExecutor) Execute(ctx context.Context, plan selector.Plan) metrics.Outcome {
	atomic.AddInt64(&f.calls, 1)
	return metrics.Outcome{
		Endpoint: plan.Endpoint,
		Kind:     metrics.ErrorKindConnection,
		Message:  "connection refused",
	}
}

func TestDispatcherCompletesDespiteAllFailures(t *testing.T) {
	exec := &failingExecutor{}
	d := dispatch.New(dispatch.Options{
		Concurrency:   2,
		TotalRequests: 6,
		Executor:      exec,
		Picker:        &indexPicker{endpoints: endpoints(2)},
	})

	outcomes, _ := d.Run(context.Background())
	if len(outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Success {
			t.Errorf("expected all failures, got success for %s", o.Endpoint)
		}
	}
	if exec.calls != 6 {
		t.Errorf("executor called %d times, want 6", exec.calls)
	}
}

func TestDispatcherCanceledContextSkipsPacing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// At 1 rps a live run of 6 requests would pace out over seconds; with the
	// context already canceled the limiter is dropped and every request still
	// settles.
	exec := newFakeExecutor(nil)
	d := dispatch.New(dispatch.Options{
		Concurrency:   2,
		TotalRequests: 6,
		RatePerSecond: 1,
		Executor:      exec,
		Picker:        &indexPicker{endpoints: endpoints(6)},
	})

	start := time.Now()
	outcomes, _ := d.Run(ctx)
	if len(outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(outcomes))
	}
	if exec.calls != 6 {
		t.Errorf("executor called %d times, want 6", exec.calls)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("canceled run took %v; launches should not be paced", elapsed)
	}
}

func TestDispatcherObserverSeesEveryOutcome(t *testing.T) {
	exec := newFakeExecutor(nil)
	var observed int64
	d := dispatch.New(dispatch.Options{
		Concurrency:   4,
		TotalRequests: 12,
		Executor:      exec,
		Picker:        &indexPicker{endpoints: endpoints(4)},
		Observer: func(metrics.Outcome) {
			atomic.AddInt64(&observed, 1)
		},
	})

	d.Run(context.Background())
	if observed != 12 {
		t.Errorf("observer saw %d outcomes, want 12", observed)
	}
}

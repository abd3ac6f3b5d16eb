package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/surgehq/surge/internal/config"
	"github.com/surgehq/surge/internal/dashboard"
	"github.com/surgehq/surge/internal/dispatch"
	"github.com/surgehq/surge/internal/httpclient"
	"github.com/surgehq/surge/internal/metrics"
	"github.com/surgehq/surge/internal/output"
	"github.com/surgehq/surge/internal/probe"
	"github.com/surgehq/surge/internal/selector"
	"github.com/surgehq/surge/internal/tracing"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(o metrics.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[surge] %s %s failed: %s\n", o.Endpoint, o.Kind, o.Message)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	sel, err := newSelector(cfg)
	if err != nil {
		return err
	}

	var expect probe.Expectation
	if cfg.Expect != "" {
		path, value, parseErr := config.ParseExpect(cfg.Expect)
		if parseErr != nil {
			return parseErr
		}
		expect = probe.Expectation{Path: path, Value: value}
	}

	exec, err := probe.New(probe.Options{
		Client:  httpclient.NewClient(),
		BaseURL: cfg.TargetURL,
		Timeout: cfg.Timeout,
		Tracer:  tracer,
		Expect:  expect,
	})
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()

	var failureLogger *stderrFailureLogger
	if cfg.LogErrors {
		failureLogger = &stderrFailureLogger{}
	}
	observer := func(o metrics.Outcome) {
		collector.Record(o)
		if failureLogger != nil && !o.Success {
			failureLogger.LogFailure(o)
		}
	}

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.RunConfig{
			TargetURL:   cfg.TargetURL,
			Concurrency: cfg.Concurrency,
			Total:       cfg.Total,
			Repeat:      cfg.Repeat,
			Rate:        cfg.Rate,
			Timeout:     cfg.Timeout,
			Mode:        string(cfg.Mode),
			ConfigFile:  cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(os.Stdout)
		}()
	}

	collector.Start()

	runs := make([]metrics.RunSummary, 0, cfg.Repeat)
	for i := 1; i <= cfg.Repeat; i++ {
		d := dispatch.New(dispatch.Options{
			Concurrency:   cfg.Concurrency,
			TotalRequests: cfg.Total,
			RatePerSecond: cfg.Rate,
			Executor:      exec,
			Picker:        sel,
			Observer:      observer,
		})
		outcomes, elapsed := d.Run(ctx)
		summary := metrics.NewRunSummary(i, ulid.Make().String(), outcomes, elapsed, cfg.Endpoints)
		runs = append(runs, summary)

		if !cfg.JSONOutput && !cfg.Dashboard {
			output.PrintRunReport(os.Stdout, summary)
		}
	}

	// The dashboard owns the terminal while runs execute; tear it down first
	// so the final tables land on a restored screen.
	if dash != nil {
		dash.Stop()
	}

	global := metrics.Merge(runs)
	result := output.Result{Runs: runs, Global: global}

	if err := printReports(os.Stdout, cfg, runs, global); err != nil {
		return err
	}

	if cfg.JSONFile != "" {
		if err := output.WriteJSONFile(cfg.JSONFile, result); err != nil {
			return err
		}
	}

	var failures int
	for _, em := range global.Metrics {
		failures += em.Failures
	}
	if failures > 0 {
		return fmt.Errorf("%d requests failed", failures)
	}
	return nil
}

// printReports emits the run results once the run loop (and any live UI) is
// done. Plain runs printed their per-run tables as each run finished, so only
// the merged summary remains; dashboard runs suppressed them and print the
// full set here.
func printReports(w io.Writer, cfg *config.Config, runs []metrics.RunSummary, global metrics.GlobalSummary) error {
	if cfg.JSONOutput {
		return output.PrintJSONReport(w, output.Result{Runs: runs, Global: global})
	}
	if cfg.Dashboard {
		for _, summary := range runs {
			output.PrintRunReport(w, summary)
		}
	}
	output.PrintGlobalReport(w, global)
	return nil
}

func newSelector(cfg *config.Config) (*selector.Selector, error) {
	mode, err := selector.ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}

	methods := selector.DefaultMethodTable()
	if len(cfg.Mutating) > 0 {
		methods = selector.MethodTable{}
		for _, ep := range cfg.Mutating {
			methods[ep] = http.MethodPost
		}
	}

	var rnd *rand.Rand
	if mode == selector.ModeRandom {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rnd = rand.New(rand.NewSource(seed))
	}

	return selector.New(cfg.Endpoints, methods, mode, rnd)
}

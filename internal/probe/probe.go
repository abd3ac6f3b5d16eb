// Package probe executes single HTTP requests and records their outcomes.
//
// A Probe wraps one dispatched request: it measures wall-clock time from
// send to settle (response, transport error, or timeout) and classifies the
// result into exactly one outcome. Failures never propagate as errors; the
// dispatcher only ever sees settled outcomes.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/surgehq/surge/internal/metrics"
	"github.com/surgehq/surge/internal/selector"
	"github.com/surgehq/surge/internal/tracing"
)

const maxBodySnippet = 1024

// Expectation optionally asserts on a JSON field of successful responses.
// Path is a gjson path; when Value is non-empty the field must match it
// exactly, otherwise the field only has to exist.
type Expectation struct {
	Path  string
	Value string
}

func (e Expectation) enabled() bool {
	return strings.TrimSpace(e.Path) != ""
}

// Probe issues requests against a single target base URL.
type Probe struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	tracer  *tracing.Provider
	expect  Expectation
}

// Options configure a Probe.
type Options struct {
	Client  *http.Client
	BaseURL string
	Timeout time.Duration
	Tracer  *tracing.Provider
	Expect  Expectation
}

func New(opt Options) (*Probe, error) {
	if opt.Client == nil {
		return nil, errors.New("http client is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opt.BaseURL), "/")
	if base == "" {
		return nil, errors.New("target base URL is required")
	}
	if opt.Timeout <= 0 {
		return nil, errors.New("per-request timeout must be > 0")
	}
	return &Probe{
		client:  opt.Client,
		baseURL: base,
		timeout: opt.Timeout,
		tracer:  opt.Tracer,
		expect:  opt.Expect,
	}, nil
}

// Execute sends one planned request and returns its settled outcome. The
// request carries its own timeout; on expiry it is abandoned and the outcome
// reports the elapsed time at expiry.
func (p *Probe) Execute(ctx context.Context, plan selector.Plan) metrics.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ctx, span := tracing.StartRequestSpan(ctx, p.tracer.Tracer(), plan.Method, plan.Endpoint)

	outcome := p.execute(ctx, plan)

	var spanErr error
	if !outcome.Success {
		spanErr = fmt.Errorf("%s: %s", outcome.Kind, outcome.Message)
	}
	tracing.EndSpan(span, spanErr,
		attribute.Int("http.response.status_code", outcome.Status),
		attribute.Int64("surge.latency_ms", outcome.LatencyMs),
	)
	return outcome
}

func (p *Probe) execute(ctx context.Context, plan selector.Plan) metrics.Outcome {
	outcome := metrics.Outcome{Endpoint: plan.Endpoint}

	var body io.Reader
	if plan.Body != "" {
		body = strings.NewReader(plan.Body)
	}
	req, err := http.NewRequestWithContext(ctx, plan.Method, p.baseURL+plan.Endpoint, body)
	if err != nil {
		outcome.Kind = metrics.ErrorKindUnknown
		outcome.Message = err.Error()
		return outcome
	}
	if plan.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.tracer.ShouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	outcome.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		outcome.Kind, outcome.Message = classify(err)
		return outcome
	}
	defer resp.Body.Close()

	outcome.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		_, _ = io.Copy(io.Discard, resp.Body)
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		outcome.Kind = metrics.ErrorKindHTTP
		outcome.Message = httpErr.Error()
		return outcome
	}

	if p.expect.enabled() {
		payload, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_, _ = io.Copy(io.Discard, resp.Body)
		if readErr != nil {
			outcome.Kind = metrics.ErrorKindUnknown
			outcome.Message = fmt.Sprintf("read response body: %v", readErr)
			return outcome
		}
		if msg, ok := checkExpectation(p.expect, payload); !ok {
			outcome.Kind = metrics.ErrorKindUnknown
			outcome.Message = msg
			return outcome
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	outcome.Success = true
	return outcome
}

func checkExpectation(expect Expectation, payload []byte) (string, bool) {
	value := gjson.GetBytes(payload, expect.Path)
	if !value.Exists() {
		return fmt.Sprintf("response field %q not found", expect.Path), false
	}
	if expect.Value != "" && value.String() != expect.Value {
		return fmt.Sprintf("response field %q = %q, want %q", expect.Path, value.String(), expect.Value), false
	}
	return "", true
}

// classify maps a transport-level error into the outcome taxonomy. Timeouts
// take precedence over the wrapping url.Error so an expired deadline is never
// reported as a connection failure.
func classify(err error) (metrics.ErrorKind, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.ErrorKindTimeout, "request timed out"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return metrics.ErrorKindTimeout, "request timed out"
		}
		return metrics.ErrorKindConnection, urlErr.Error()
	}
	return metrics.ErrorKindUnknown, err.Error()
}

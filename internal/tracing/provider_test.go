package tracing

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/surgehq/surge/internal/config"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.ShouldPropagate() {
		t.Error("disabled tracing must not propagate")
	}
	if p.Tracer() == nil {
		t.Error("disabled provider must still hand out a tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestInitEnabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	p, err := Init(context.Background(), config.TracingConfig{Enable: true, Propagate: true, SampleRate: 1})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	// No exporter anywhere: spans are no-ops, propagation still applies.
	if !p.ShouldPropagate() {
		t.Error("propagation setting lost")
	}
	_, span := p.Tracer().Start(context.Background(), "noop")
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	if p.ShouldPropagate() {
		t.Error("nil provider must not propagate")
	}
	if p.Tracer() == nil {
		t.Error("nil provider must hand out a no-op tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	cases := []struct {
		rate float64
		want sdktrace.Sampler
	}{
		{rate: 0, want: sdktrace.NeverSample()},
		{rate: -0.5, want: sdktrace.NeverSample()},
		{rate: 1, want: sdktrace.AlwaysSample()},
		{rate: 0.25, want: sdktrace.TraceIDRatioBased(0.25)},
	}
	for _, tc := range cases {
		if got := samplerFor(tc.rate); got.Description() != tc.want.Description() {
			t.Errorf("samplerFor(%v) = %s, want %s", tc.rate, got.Description(), tc.want.Description())
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "a", "b"); got != "a" {
		t.Errorf("firstNonEmpty = %q, want a", got)
	}
	if got := firstNonEmpty("", " "); got != "" {
		t.Errorf("firstNonEmpty of blanks = %q, want empty", got)
	}
}

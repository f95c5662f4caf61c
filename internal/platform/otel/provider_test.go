package otel

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("LEADERBOARD_OTEL_ENDPOINT", "")
	t.Setenv("LEADERBOARD_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupNoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("LEADERBOARD_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("LEADERBOARD_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupCreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no export reaches a collector.
	t.Setenv("LEADERBOARD_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("LEADERBOARD_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupRejectsInvalidSettings(t *testing.T) {
	t.Setenv("LEADERBOARD_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("LEADERBOARD_OTEL_SAMPLE_RATIO", "lots")

	shutdown, err := Setup(context.Background(), "test-service")
	if err == nil {
		t.Fatal("expected settings error")
	}
	if !strings.Contains(err.Error(), "otel settings") {
		t.Fatalf("err = %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected noop shutdown on error")
	}
}

func TestSamplerBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 2, want: "AlwaysOnSampler"},
		{ratio: 0, want: "AlwaysOffSampler"},
		{ratio: 0.5, want: "ParentBased"},
	}
	for _, tc := range tests {
		got := sampler(tc.ratio).Description()
		if !strings.HasPrefix(got, tc.want) {
			t.Fatalf("sampler(%v) = %q, want prefix %q", tc.ratio, got, tc.want)
		}
	}
}

func TestForceFlushExportsBufferedSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	otel.SetTracerProvider(tp)

	_, span := otel.Tracer("test").Start(context.Background(), "invoke")
	span.End()

	if err := ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush: %v", err)
	}
	if got := len(exporter.GetSpans()); got != 1 {
		t.Fatalf("exported spans = %d, want 1", got)
	}
}

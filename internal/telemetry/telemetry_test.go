package telemetry

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type discardSpanExporter struct{}

func (discardSpanExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (discardSpanExporter) Shutdown(context.Context) error                             { return nil }

type discardMetricExporter struct{}

func (discardMetricExporter) Temporality(sdkmetric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

func (discardMetricExporter) Aggregation(sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.AggregationDefault{}
}

func (discardMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }
func (discardMetricExporter) ForceFlush(context.Context) error                          { return nil }
func (discardMetricExporter) Shutdown(context.Context) error                            { return nil }

func TestInitialize(t *testing.T) {
	t.Run("rejects out of range sample rates", func(t *testing.T) {
		for _, rate := range []float64{-0.1, 1.5} {
			_, err := Initialize(context.Background(), Config{SampleRate: rate})
			if !errors.Is(err, ErrInvalidSampleRate) {
				t.Errorf("rate %v: expected ErrInvalidSampleRate, got %v", rate, err)
			}
		}
	})

	t.Run("starts and stops both signals", func(t *testing.T) {
		cfg := Config{
			ServiceName:   "mesob-test",
			EnableTracing: true,
			EnableMetrics: true,
			SampleRate:    1.0,
		}

		tel, err := Initialize(context.Background(), cfg,
			WithSpanExporter(discardSpanExporter{}),
			WithMetricExporter(discardMetricExporter{}),
		)
		if err != nil {
			t.Fatalf("initialize: %v", err)
		}
		if len(tel.stops) != 4 {
			t.Errorf("expected 4 shutdown hooks, got %d", len(tel.stops))
		}
		if err := tel.Shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})

	t.Run("disabled config starts nothing", func(t *testing.T) {
		tel, err := Initialize(context.Background(), Config{SampleRate: 0.5})
		if err != nil {
			t.Fatalf("initialize: %v", err)
		}
		if len(tel.stops) != 0 {
			t.Errorf("expected nothing to stop, got %d hooks", len(tel.stops))
		}
		if err := tel.Shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})
}

func TestSamplerFor(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{0.0, sdktrace.NeverSample().Description()},
		{-1.0, sdktrace.NeverSample().Description()},
		{1.0, sdktrace.AlwaysSample().Description()},
		{2.0, sdktrace.AlwaysSample().Description()},
		{0.25, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}

	for _, tc := range cases {
		if got := samplerFor(tc.rate).Description(); got != tc.want {
			t.Errorf("rate %v: expected sampler %q, got %q", tc.rate, tc.want, got)
		}
	}
}

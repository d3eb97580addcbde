// Package telemetry wires OpenTelemetry tracing and metrics for the API
// service and provides the trace-correlated logger the rest of the code
// logs through.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultServiceName = "mesob-api"

// ErrInvalidSampleRate rejects sample rates outside [0.0, 1.0].
var ErrInvalidSampleRate = errors.New("telemetry: sample rate must be within [0.0, 1.0]")

// Config selects which signals to export and where to send them.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	EnableTracing  bool
	EnableMetrics  bool
	SampleRate     float64
}

// Telemetry tracks everything Initialize started so Shutdown can stop it
// in the right order.
type Telemetry struct {
	stops []func(context.Context) error
}

// Option overrides an exporter. Tests use this to avoid a live collector.
type Option func(*settings)

type settings struct {
	spanExporter   sdktrace.SpanExporter
	metricExporter sdkmetric.Exporter
}

func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(s *settings) { s.spanExporter = exp }
}

func WithMetricExporter(exp sdkmetric.Exporter) Option {
	return func(s *settings) { s.metricExporter = exp }
}

// Initialize sets the global tracer and meter providers according to cfg
// and returns a handle used to shut them down on exit.
func Initialize(ctx context.Context, cfg Config, opts ...Option) (*Telemetry, error) {
	if cfg.SampleRate < 0.0 || cfg.SampleRate > 1.0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}

	var set settings
	for _, opt := range opts {
		opt(&set)
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	tel := &Telemetry{}

	if cfg.EnableTracing {
		exp := set.spanExporter
		if exp == nil {
			// Plaintext gRPC; the local collector carries no TLS and
			// deployments terminate TLS in front of it.
			exp, err = otlptracegrpc.New(ctx,
				otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
				otlptracegrpc.WithInsecure(),
			)
			if err != nil {
				return nil, fmt.Errorf("create trace exporter: %w", err)
			}
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(samplerFor(cfg.SampleRate)),
			sdktrace.WithBatcher(exp),
		)
		otel.SetTracerProvider(tp)
		tel.stops = append(tel.stops, exp.Shutdown, tp.Shutdown)
	}

	if cfg.EnableMetrics {
		exp := set.metricExporter
		if exp == nil {
			exp, err = otlpmetricgrpc.New(ctx,
				otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				_ = tel.Shutdown(ctx)
				return nil, fmt.Errorf("create metric exporter: %w", err)
			}
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		)
		otel.SetMeterProvider(mp)
		tel.stops = append(tel.stops, exp.Shutdown, mp.Shutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tel, nil
}

func buildResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	return resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithFromEnv(),
		resource.WithHost(),
	)
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0.0:
		return sdktrace.NeverSample()
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Shutdown stops providers before their exporters so buffered spans and
// metrics are flushed.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.stops) - 1; i >= 0; i-- {
		if err := t.stops[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

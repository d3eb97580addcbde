package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newBufferedLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	inner := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return slog.New(&traceHandler{inner: inner}), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggerTraceCorrelation(t *testing.T) {
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	t.Run("adds trace and span ids inside a span", func(t *testing.T) {
		logger, buf := newBufferedLogger(slog.LevelInfo)

		ctx, span := StartSpan(context.Background(), "Logging.Test")
		defer span.End()

		logger.InfoContext(ctx, "inside span")

		entry := decodeLine(t, buf)
		if entry["trace_id"] != span.SpanContext().TraceID().String() {
			t.Errorf("expected trace id %s, got %v", span.SpanContext().TraceID(), entry["trace_id"])
		}
		if entry["span_id"] != span.SpanContext().SpanID().String() {
			t.Errorf("expected span id %s, got %v", span.SpanContext().SpanID(), entry["span_id"])
		}
	})

	t.Run("plain context logs without trace fields", func(t *testing.T) {
		logger, buf := newBufferedLogger(slog.LevelInfo)

		logger.InfoContext(context.Background(), "no span")

		entry := decodeLine(t, buf)
		if _, ok := entry["trace_id"]; ok {
			t.Error("expected no trace_id without an active span")
		}
	})
}

func TestLoggerLevelAndAttrs(t *testing.T) {
	t.Run("suppresses records below the configured level", func(t *testing.T) {
		logger, buf := newBufferedLogger(slog.LevelWarn)

		logger.Info("too quiet")
		if buf.Len() != 0 {
			t.Errorf("expected info record dropped, got %q", buf.String())
		}

		logger.Warn("loud enough")
		if buf.Len() == 0 {
			t.Error("expected warn record written")
		}
	})

	t.Run("carries attrs and groups through the handler chain", func(t *testing.T) {
		logger, buf := newBufferedLogger(slog.LevelInfo)

		logger.With("service", "mesob").WithGroup("req").Info("handled", "path", "/api/orders")

		entry := decodeLine(t, buf)
		if entry["service"] != "mesob" {
			t.Errorf("expected service attr, got %v", entry["service"])
		}
		group, ok := entry["req"].(map[string]any)
		if !ok || group["path"] != "/api/orders" {
			t.Errorf("expected grouped path attr, got %v", entry["req"])
		}
	})
}

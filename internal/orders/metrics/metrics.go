package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersPlacedTotal    metric.Int64Counter
	orderPlacementTotal  metric.Float64Histogram
	statusChangesTotal   metric.Int64Counter
	ordersCancelledTotal metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.orderPlacementTotal, err = meter.Float64Histogram(
		"order_placement_duration_seconds",
		metric.WithDescription("Duration of order placement operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_placement_duration histogram: %w", err)
	}

	m.statusChangesTotal, err = meter.Int64Counter(
		"order_status_changes_total",
		metric.WithDescription("Total number of order status transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_status_changes_total counter: %w", err)
	}

	m.ordersCancelledTotal, err = meter.Int64Counter(
		"orders_cancelled_total",
		metric.WithDescription("Total number of orders cancelled and removed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_cancelled_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordOrderPlacementDuration(ctx context.Context, durationSeconds float64) {
	m.orderPlacementTotal.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordStatusChange(ctx context.Context, to string) {
	m.statusChangesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("to", to),
	))
}

func (m *Metrics) RecordOrderCancelled(ctx context.Context) {
	m.ordersCancelledTotal.Add(ctx, 1)
}

package commands

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/orders/metrics"
	"github.com/nmesfin/mesob/internal/telemetry"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "PlaceOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		if o.metrics == nil {
			return
		}
		duration := time.Since(start).Seconds()
		o.metrics.RecordOrderPlacementDuration(ctx, duration)
		o.metrics.RecordOrderPlaced(ctx, success)
	}()

	o.logger.InfoContext(ctx, "placing order",
		"customer_id", cmd.CustomerID,
		"item_count", len(cmd.Items),
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to place order",
			"error", err,
			"customer_id", cmd.CustomerID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.customer_id", order.CustomerID),
		attribute.Int64("order.total_cents", order.TotalCents),
		attribute.String("order.status", string(order.Status)),
	)

	o.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"total_cents", order.TotalCents,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}

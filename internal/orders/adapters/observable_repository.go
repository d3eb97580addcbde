package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nmesfin/mesob/internal/database"
	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/orders/ports"
	"github.com/nmesfin/mesob/internal/telemetry"
)

const ordersCollection = "orders"

// ObservableRepository decorates an order repository with spans and query
// duration metrics.
type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) record(ctx context.Context, operation string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordQuery(ctx, ordersCollection, operation, time.Since(start).Seconds())
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.customer_id", order.CustomerID),
		attribute.String("operation", "create"),
	)

	start := time.Now()
	created, err := r.repo.Create(ctx, order)
	r.record(ctx, "create_order", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.String("order.id", created.ID))
	telemetry.SetSpanSuccess(span)
	return created, nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "get_by_id"),
	)

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	r.record(ctx, "get_order_by_id", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.List")
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("operation", "list"),
	}
	if filter.CustomerID != "" {
		attrs = append(attrs, attribute.String("filter.customer_id", filter.CustomerID))
	}
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	orders, err := r.repo.List(ctx, filter)
	r.record(ctx, "list_orders", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("order.from_status", string(from)),
		attribute.String("order.to_status", string(to)),
		attribute.String("operation", "update_status"),
	)

	start := time.Now()
	err := r.repo.UpdateStatus(ctx, id, from, to)
	r.record(ctx, "update_order_status", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Delete")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", id),
		attribute.String("operation", "delete"),
	)

	start := time.Now()
	err := r.repo.Delete(ctx, id)
	r.record(ctx, "delete_order", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (r *ObservableRepository) SalesSummary(ctx context.Context) (ports.SalesSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.SalesSummary")
	defer span.End()

	start := time.Now()
	summary, err := r.repo.SalesSummary(ctx)
	r.record(ctx, "sales_summary", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return ports.SalesSummary{}, err
	}

	telemetry.SetSpanSuccess(span)
	return summary, nil
}

func (r *ObservableRepository) DailySales(ctx context.Context, since time.Time) ([]ports.DailySale, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.DailySales")
	defer span.End()

	start := time.Now()
	sales, err := r.repo.DailySales(ctx, since)
	r.record(ctx, "daily_sales", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return sales, nil
}

func (r *ObservableRepository) TopProduct(ctx context.Context) (*ports.ProductSales, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.TopProduct")
	defer span.End()

	start := time.Now()
	top, err := r.repo.TopProduct(ctx)
	r.record(ctx, "top_product", start)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return top, nil
}

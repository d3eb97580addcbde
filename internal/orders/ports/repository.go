package ports

import (
	"context"
	"errors"
	"time"

	"github.com/nmesfin/mesob/internal/orders/domain"
)

// OrderRepository exposes the persistence operations required by the
// application layer, including the read-only aggregates behind admin stats.
type OrderRepository interface {
	// Create persists the order, assigns its identifier, and returns the
	// stored record.
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	// UpdateStatus is a compare-and-swap: it only writes when the stored
	// status still equals from, returning ErrStatusConflict otherwise.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status) error
	// Delete removes the order permanently.
	Delete(ctx context.Context, id string) error

	SalesSummary(ctx context.Context) (SalesSummary, error)
	DailySales(ctx context.Context, since time.Time) ([]DailySale, error)
	TopProduct(ctx context.Context) (*ProductSales, error)
}

// ListFilter narrows listing to a single customer. Empty means all orders.
type ListFilter struct {
	CustomerID string
}

// SalesSummary is total revenue and order count over all non-cancelled orders.
type SalesSummary struct {
	TotalRevenueCents int64 `json:"total_revenue_cents"`
	TotalOrders       int64 `json:"total_orders"`
}

// DailySale is one calendar day (UTC, formatted YYYY-MM-DD) of delivered sales.
type DailySale struct {
	Day        string `json:"day"`
	TotalCents int64  `json:"total_cents"`
}

// ProductSales is the cumulative delivered quantity for one product.
type ProductSales struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrStatusConflict is returned when a compare-and-swap status update
	// loses a race with a concurrent writer.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

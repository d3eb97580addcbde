package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and
// tests, including the stats aggregates computed in Go.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// Create stores a new order and assigns its identifier.
func (r *Repository) Create(_ context.Context, order domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	r.orders[order.ID] = order

	stored := order
	return &stored, nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored := order
	return &stored, nil
}

// List returns orders respecting the provided filter, oldest first.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.orders {
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PlacedAt.Before(result[j].PlacedAt)
	})

	return result, nil
}

// UpdateStatus performs a compare-and-swap on the order status.
func (r *Repository) UpdateStatus(_ context.Context, id string, from, to domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if order.Status != from {
		return ports.ErrStatusConflict
	}

	order.Status = to
	r.orders[id] = order
	return nil
}

// Delete removes an order permanently.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// SalesSummary totals revenue and order count over non-cancelled orders.
func (r *Repository) SalesSummary(_ context.Context) (ports.SalesSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var summary ports.SalesSummary
	for _, order := range r.orders {
		if order.Status == domain.StatusCancelled {
			continue
		}
		summary.TotalRevenueCents += order.TotalCents
		summary.TotalOrders++
	}
	return summary, nil
}

// DailySales groups delivered orders since the cutoff by UTC calendar day,
// ascending.
func (r *Repository) DailySales(_ context.Context, since time.Time) ([]ports.DailySale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]int64)
	for _, order := range r.orders {
		if order.Status != domain.StatusDelivered || order.PlacedAt.Before(since) {
			continue
		}
		day := order.PlacedAt.UTC().Format("2006-01-02")
		totals[day] += order.TotalCents
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	result := make([]ports.DailySale, 0, len(days))
	for _, day := range days {
		result = append(result, ports.DailySale{Day: day, TotalCents: totals[day]})
	}
	return result, nil
}

// TopProduct returns the product with the highest cumulative delivered
// quantity, or nil when no delivered orders exist.
func (r *Repository) TopProduct(_ context.Context) (*ports.ProductSales, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, order := range r.orders {
		if order.Status != domain.StatusDelivered {
			continue
		}
		for _, item := range order.Items {
			counts[item.ProductID] += int64(item.Quantity)
		}
	}

	var top *ports.ProductSales
	for productID, quantity := range counts {
		if top == nil || quantity > top.Quantity {
			top = &ports.ProductSales{ProductID: productID, Quantity: quantity}
		}
	}
	return top, nil
}

package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/auth"
	"github.com/nmesfin/mesob/internal/orders/app/commands"
	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/orders/metrics"
	"github.com/nmesfin/mesob/internal/orders/ports"
	"github.com/nmesfin/mesob/internal/users"
)

// Service bundles the order lifecycle use cases. Every operation checks the
// policy table before touching the store.
type Service struct {
	repo              ports.OrderRepository
	catalog           ports.ProductResolver
	customers         ports.CustomerDirectory
	notifier          ports.Notifier
	metrics           *metrics.Metrics
	placeOrderHandler commands.CommandHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	catalog ports.ProductResolver,
	customers ports.CustomerDirectory,
	notifier ports.Notifier,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	coreHandler := commands.NewPlaceOrderCommandHandler(repo, catalog, notifier)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, m)

	return &Service{
		repo:              repo,
		catalog:           catalog,
		customers:         customers,
		notifier:          notifier,
		metrics:           m,
		placeOrderHandler: observableHandler,
	}
}

// PlaceOrderInput captures the checkout payload after transport validation.
type PlaceOrderInput struct {
	Items           []domain.LineItem
	DeliveryAddress string
}

// PlaceOrder creates a pending order for the caller, pricing line items
// against the live catalog.
func (s *Service) PlaceOrder(ctx context.Context, ident auth.Identity, input PlaceOrderInput) (*domain.Order, error) {
	if err := domain.Authorize(domain.ActionPlaceOrder, users.Role(ident.Role), true); err != nil {
		return nil, err
	}

	cmd := commands.PlaceOrderCommand{
		CustomerID:      ident.UserID,
		Items:           input.Items,
		DeliveryAddress: input.DeliveryAddress,
	}
	return s.placeOrderHandler.Handle(ctx, cmd)
}

// ItemView is a line item resolved to display form.
type ItemView struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	PriceCents  int64  `json:"price_cents,omitempty"`
	Quantity    int    `json:"quantity"`
}

// OrderView is an order with customer and product references resolved.
type OrderView struct {
	domain.Order
	CustomerName  string     `json:"customer_name,omitempty"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	ItemViews     []ItemView `json:"item_views,omitempty"`
}

// ListOrders returns all orders for admins, and only the caller's own
// orders otherwise.
func (s *Service) ListOrders(ctx context.Context, ident auth.Identity) ([]OrderView, error) {
	role := users.Role(ident.Role)
	if err := domain.Authorize(domain.ActionListOrders, role, true); err != nil {
		return nil, err
	}

	filter := ports.ListFilter{}
	if domain.Permission(domain.ActionListOrders, role) == domain.AllowOwn {
		filter.CustomerID = ident.UserID
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.resolveViews(ctx, orders)
}

// UpdateStatus moves an order along the lifecycle. Writing the current
// status again is a no-op; anything else must be a permitted transition.
func (s *Service) UpdateStatus(ctx context.Context, ident auth.Identity, orderID, statusStr string) (*OrderView, error) {
	if err := domain.Authorize(domain.ActionUpdateStatus, users.Role(ident.Role), false); err != nil {
		return nil, err
	}

	target, err := domain.ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Idempotent repeat: same status twice leaves the order unchanged and
	// emits no second notification.
	if order.Status == target {
		return s.resolveView(ctx, *order)
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, apperror.Newf(apperror.KindInvalidState,
			"cannot move order from %s to %s", order.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, order.Status, target); err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			return nil, apperror.New(apperror.KindNotFound, "order not found")
		case errors.Is(err, ports.ErrStatusConflict):
			// A concurrent writer got there first; report against the
			// fresh state rather than guessing.
			fresh, ferr := s.getOrder(ctx, orderID)
			if ferr != nil {
				return nil, ferr
			}
			return nil, apperror.Newf(apperror.KindInvalidState,
				"order moved to %s concurrently", fresh.Status)
		default:
			return nil, err
		}
	}

	order.Status = target
	if s.metrics != nil {
		s.metrics.RecordStatusChange(ctx, string(target))
	}

	// The write is committed at this point. A failed display lookup must
	// not suppress the change notification, so degrade to bare ids.
	view, err := s.resolveView(ctx, *order)
	if err != nil {
		view = &OrderView{Order: *order}
	}

	s.notifier.Publish(ctx, ports.EventOrderStatusChanged, view)
	s.notifier.PublishToRoom(ctx, order.ID, ports.EventOrderStatusChanged, view)

	return view, nil
}

// CancelOrder removes an order permanently. Customers may only cancel
// their own orders while still pending; admins delete unconditionally.
func (s *Service) CancelOrder(ctx context.Context, ident auth.Identity, orderID string) (string, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	role := users.Role(ident.Role)
	if err := domain.Authorize(domain.ActionCancelOrder, role, order.CustomerID == ident.UserID); err != nil {
		return "", err
	}

	if role != users.RoleAdmin && order.Status != domain.StatusPending {
		return "", apperror.New(apperror.KindInvalidState, "cannot cancel order once preparation has started")
	}

	if err := s.repo.Delete(ctx, orderID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", apperror.New(apperror.KindNotFound, "order not found")
		}
		return "", err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCancelled(ctx)
	}
	s.notifier.Publish(ctx, ports.EventOrderCancelled, map[string]string{"order_id": orderID})

	return orderID, nil
}

// Stats is the admin revenue and sales report.
type Stats struct {
	Summary    ports.SalesSummary `json:"summary"`
	DailySales []ports.DailySale  `json:"daily_sales"`
	TopItem    string             `json:"top_item"`
}

// noSalesYet is reported when no delivered orders exist.
const noSalesYet = "No sales yet"

// GetStats aggregates revenue totals, the trailing-7-day delivered series
// (UTC calendar days), and the best-selling delivered product.
func (s *Service) GetStats(ctx context.Context, ident auth.Identity) (*Stats, error) {
	if err := domain.Authorize(domain.ActionViewStats, users.Role(ident.Role), false); err != nil {
		return nil, err
	}

	summary, err := s.repo.SalesSummary(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "aggregate sales summary", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -7)
	daily, err := s.repo.DailySales(ctx, since)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "aggregate daily sales", err)
	}

	topItem := noSalesYet
	top, err := s.repo.TopProduct(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "aggregate top product", err)
	}
	if top != nil {
		products, err := s.catalog.Resolve(ctx, []string{top.ProductID})
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, "resolve top product", err)
		}
		if product, ok := products[top.ProductID]; ok {
			topItem = product.Name
		} else {
			topItem = "Unknown product"
		}
	}

	return &Stats{
		Summary:    summary,
		DailySales: daily,
		TopItem:    topItem,
	}, nil
}

func (s *Service) getOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *Service) resolveView(ctx context.Context, order domain.Order) (*OrderView, error) {
	views, err := s.resolveViews(ctx, []domain.Order{order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// resolveViews batches customer and product lookups for display. Missing
// references degrade to bare ids rather than failing the read.
func (s *Service) resolveViews(ctx context.Context, orders []domain.Order) ([]OrderView, error) {
	customerIDs := make([]string, 0, len(orders))
	seenCustomers := make(map[string]bool)
	productIDs := make([]string, 0)
	seenProducts := make(map[string]bool)

	for _, order := range orders {
		if !seenCustomers[order.CustomerID] {
			seenCustomers[order.CustomerID] = true
			customerIDs = append(customerIDs, order.CustomerID)
		}
		for _, item := range order.Items {
			if !seenProducts[item.ProductID] {
				seenProducts[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	customers := map[string]ports.Customer{}
	if len(customerIDs) > 0 {
		resolved, err := s.customers.LookupCustomers(ctx, customerIDs)
		if err != nil {
			return nil, err
		}
		customers = resolved
	}

	products := map[string]ports.CatalogProduct{}
	if len(productIDs) > 0 {
		resolved, err := s.catalog.Resolve(ctx, productIDs)
		if err != nil {
			return nil, err
		}
		products = resolved
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		view := OrderView{Order: order}
		if customer, ok := customers[order.CustomerID]; ok {
			view.CustomerName = customer.Name
			view.CustomerEmail = customer.Email
		}
		for _, item := range order.Items {
			itemView := ItemView{ProductID: item.ProductID, Quantity: item.Quantity}
			if product, ok := products[item.ProductID]; ok {
				itemView.ProductName = product.Name
				itemView.PriceCents = product.PriceCents
			}
			view.ItemViews = append(view.ItemViews, itemView)
		}
		views = append(views, view)
	}

	return views, nil
}

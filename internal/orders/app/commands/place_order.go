package commands

import (
	"context"
	"strings"
	"time"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/orders/ports"
)

// PlaceOrderCommand captures a checkout request. Prices never appear here:
// the total is always computed from the catalog, which guards against
// price tampering by the caller.
type PlaceOrderCommand struct {
	CustomerID      string
	Items           []domain.LineItem
	DeliveryAddress string
}

func (c PlaceOrderCommand) Validate() error {
	if c.CustomerID == "" {
		return apperror.New(apperror.KindValidation, "customer is required")
	}
	if len(c.Items) == 0 {
		return apperror.New(apperror.KindValidation, "cart is empty")
	}
	for _, item := range c.Items {
		if item.ProductID == "" {
			return apperror.New(apperror.KindValidation, "line item product is required")
		}
		if item.Quantity <= 0 {
			return apperror.New(apperror.KindValidation, "line item quantity must be positive")
		}
	}
	if strings.TrimSpace(c.DeliveryAddress) == "" {
		return apperror.New(apperror.KindValidation, "delivery address is required")
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error)
}

type PlaceOrderCommandHandler struct {
	repo     ports.OrderRepository
	catalog  ports.ProductResolver
	notifier ports.Notifier
}

func NewPlaceOrderCommandHandler(
	repo ports.OrderRepository,
	catalog ports.ProductResolver,
	notifier ports.Notifier,
) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
	}
}

func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := h.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "resolve products", err)
	}

	// Any line item referencing an unknown product fails the whole request
	// rather than silently contributing zero to the total.
	var totalCents int64
	for _, item := range cmd.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, apperror.Newf(apperror.KindValidation, "unknown product %q", item.ProductID)
		}
		totalCents += product.PriceCents * int64(item.Quantity)
	}

	order := domain.Order{
		CustomerID:      cmd.CustomerID,
		Items:           cmd.Items,
		TotalCents:      totalCents,
		Status:          domain.StatusPending,
		DeliveryAddress: strings.TrimSpace(cmd.DeliveryAddress),
		PlacedAt:        time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	created, err := h.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	h.notifier.Publish(ctx, ports.EventOrderCreated, created)

	return created, nil
}

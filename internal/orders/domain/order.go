package domain

import (
	"strings"
	"time"

	"github.com/nmesfin/mesob/internal/apperror"
)

// Status captures the lifecycle of an order. Orders only move forward
// through the sequence, or jump to cancelled from any non-terminal state.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out-for-delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// ParseStatus validates a status value received from a caller.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return Status(s), nil
	default:
		return "", apperror.Newf(apperror.KindValidation, "unknown order status %q", s)
	}
}

// transitions is the closed transition table. Absent entries are terminal.
var transitions = map[Status][]Status{
	StatusPending:        {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// CanTransitionTo reports whether next is a permitted successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal indicates whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// LineItem is a (product reference, quantity) pair within an order.
// Immutable after placement.
type LineItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Order represents one placed order. TotalCents is computed from catalog
// prices at creation time and never recomputed.
type Order struct {
	ID              string     `json:"id" bson:"_id,omitempty"`
	CustomerID      string     `json:"customer_id" bson:"customer_id"`
	Items           []LineItem `json:"items" bson:"items"`
	TotalCents      int64      `json:"total_cents" bson:"total_cents"`
	Status          Status     `json:"status" bson:"status"`
	DeliveryAddress string     `json:"delivery_address" bson:"delivery_address"`
	DriverID        string     `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	PlacedAt        time.Time  `json:"placed_at" bson:"placed_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if o.CustomerID == "" {
		return apperror.New(apperror.KindValidation, "customer is required")
	}
	if len(o.Items) == 0 {
		return apperror.New(apperror.KindValidation, "cart is empty")
	}
	for _, item := range o.Items {
		if item.ProductID == "" {
			return apperror.New(apperror.KindValidation, "line item product is required")
		}
		if item.Quantity <= 0 {
			return apperror.New(apperror.KindValidation, "line item quantity must be positive")
		}
	}
	if strings.TrimSpace(o.DeliveryAddress) == "" {
		return apperror.New(apperror.KindValidation, "delivery address is required")
	}
	if o.TotalCents < 0 {
		return apperror.New(apperror.KindValidation, "total must not be negative")
	}
	return nil
}

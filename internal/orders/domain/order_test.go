package domain_test

import (
	"testing"
	"time"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/orders/domain"
)

func TestOrderValidate(t *testing.T) {
	valid := domain.Order{
		ID:              "order-1",
		CustomerID:      "cust-1",
		Items:           []domain.LineItem{{ProductID: "prod-1", Quantity: 2}},
		TotalCents:      10000,
		Status:          domain.StatusPending,
		DeliveryAddress: "Bole Road, Addis Ababa",
		PlacedAt:        time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Order)
		wantErr bool
	}{
		{
			name:    "valid order",
			mutate:  func(*domain.Order) {},
			wantErr: false,
		},
		{
			name:    "missing customer",
			mutate:  func(o *domain.Order) { o.CustomerID = "" },
			wantErr: true,
		},
		{
			name:    "empty cart",
			mutate:  func(o *domain.Order) { o.Items = nil },
			wantErr: true,
		},
		{
			name:    "zero quantity",
			mutate:  func(o *domain.Order) { o.Items = []domain.LineItem{{ProductID: "prod-1", Quantity: 0}} },
			wantErr: true,
		},
		{
			name:    "negative quantity",
			mutate:  func(o *domain.Order) { o.Items = []domain.LineItem{{ProductID: "prod-1", Quantity: -3}} },
			wantErr: true,
		},
		{
			name:    "missing product reference",
			mutate:  func(o *domain.Order) { o.Items = []domain.LineItem{{Quantity: 1}} },
			wantErr: true,
		},
		{
			name:    "whitespace address",
			mutate:  func(o *domain.Order) { o.DeliveryAddress = "   " },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := valid
			tt.mutate(&order)

			err := order.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if tt.wantErr && !apperror.IsValidation(err) {
				t.Errorf("expected validation kind, got %v", apperror.KindOf(err))
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "preparing", "out-for-delivery", "delivered", "cancelled"} {
		if _, err := domain.ParseStatus(s); err != nil {
			t.Errorf("expected %q to parse, got: %v", s, err)
		}
	}

	if _, err := domain.ParseStatus("shipped"); err == nil {
		t.Error("expected unknown status to fail")
	} else if !apperror.IsValidation(err) {
		t.Errorf("expected validation kind, got %v", apperror.KindOf(err))
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    domain.Status
		to      domain.Status
		allowed bool
	}{
		{domain.StatusPending, domain.StatusPreparing, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		{domain.StatusPending, domain.StatusDelivered, false},
		{domain.StatusPending, domain.StatusOutForDelivery, false},
		{domain.StatusPreparing, domain.StatusOutForDelivery, true},
		{domain.StatusPreparing, domain.StatusCancelled, true},
		{domain.StatusPreparing, domain.StatusPending, false},
		{domain.StatusOutForDelivery, domain.StatusDelivered, true},
		{domain.StatusOutForDelivery, domain.StatusCancelled, true},
		{domain.StatusOutForDelivery, domain.StatusPreparing, false},
		{domain.StatusDelivered, domain.StatusCancelled, false},
		{domain.StatusDelivered, domain.StatusPending, false},
		{domain.StatusCancelled, domain.StatusPreparing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	if !domain.StatusDelivered.IsTerminal() {
		t.Error("delivered must be terminal")
	}
	if !domain.StatusCancelled.IsTerminal() {
		t.Error("cancelled must be terminal")
	}
	for _, s := range []domain.Status{domain.StatusPending, domain.StatusPreparing, domain.StatusOutForDelivery} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

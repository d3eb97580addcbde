package domain_test

import (
	"testing"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/users"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		action  domain.Action
		role    users.Role
		owns    bool
		wantErr bool
	}{
		{"any role may place orders", domain.ActionPlaceOrder, users.RoleCustomer, false, false},
		{"driver may place orders", domain.ActionPlaceOrder, users.RoleDriver, false, false},
		{"customer may not update status", domain.ActionUpdateStatus, users.RoleCustomer, true, true},
		{"driver may update status", domain.ActionUpdateStatus, users.RoleDriver, false, false},
		{"admin may update status", domain.ActionUpdateStatus, users.RoleAdmin, false, false},
		{"customer may cancel own order", domain.ActionCancelOrder, users.RoleCustomer, true, false},
		{"customer may not cancel another's order", domain.ActionCancelOrder, users.RoleCustomer, false, true},
		{"driver may not cancel orders", domain.ActionCancelOrder, users.RoleDriver, true, true},
		{"admin may cancel any order", domain.ActionCancelOrder, users.RoleAdmin, false, false},
		{"only admin views stats", domain.ActionViewStats, users.RoleDriver, false, true},
		{"admin views stats", domain.ActionViewStats, users.RoleAdmin, false, false},
		{"unknown role denied", domain.ActionListOrders, users.Role("ghost"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.Authorize(tt.action, tt.role, tt.owns)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !apperror.IsAuthorization(err) {
					t.Errorf("expected authorization kind, got %v", apperror.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
		})
	}
}

func TestListScope(t *testing.T) {
	if domain.Permission(domain.ActionListOrders, users.RoleAdmin) != domain.Allow {
		t.Error("admin must see all orders")
	}
	if domain.Permission(domain.ActionListOrders, users.RoleCustomer) != domain.AllowOwn {
		t.Error("customer listing must be scoped to own orders")
	}
}

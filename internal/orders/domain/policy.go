package domain

import (
	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/users"
)

// Action names an operation on the order manager for authorization purposes.
type Action string

const (
	ActionPlaceOrder   Action = "place_order"
	ActionListOrders   Action = "list_orders"
	ActionUpdateStatus Action = "update_status"
	ActionCancelOrder  Action = "cancel_order"
	ActionViewStats    Action = "view_stats"
)

// Effect is the outcome of a policy lookup.
type Effect int

const (
	// Deny rejects the action outright.
	Deny Effect = iota
	// Allow permits the action on any order.
	Allow
	// AllowOwn permits the action only on the caller's own orders.
	AllowOwn
)

// policy is the single authorization table: (action, role) -> effect.
// Checked uniformly before each operation instead of per-handler conditionals.
var policy = map[Action]map[users.Role]Effect{
	ActionPlaceOrder: {
		users.RoleCustomer: Allow,
		users.RoleAdmin:    Allow,
		users.RoleDriver:   Allow,
	},
	ActionListOrders: {
		users.RoleCustomer: AllowOwn,
		users.RoleAdmin:    Allow,
		users.RoleDriver:   AllowOwn,
	},
	ActionUpdateStatus: {
		users.RoleAdmin:  Allow,
		users.RoleDriver: Allow,
	},
	ActionCancelOrder: {
		users.RoleCustomer: AllowOwn,
		users.RoleAdmin:    Allow,
	},
	ActionViewStats: {
		users.RoleAdmin: Allow,
	},
}

// Permission looks up the effect for an action and role. Unknown pairs deny.
func Permission(action Action, role users.Role) Effect {
	return policy[action][role]
}

// Authorize applies the policy table. ownsTarget reports whether the caller
// owns the order the action targets; it is ignored for Allow and Deny.
func Authorize(action Action, role users.Role, ownsTarget bool) error {
	switch Permission(action, role) {
	case Allow:
		return nil
	case AllowOwn:
		if ownsTarget {
			return nil
		}
		return apperror.New(apperror.KindAuthorization, "not authorized for this order")
	default:
		return apperror.Newf(apperror.KindAuthorization, "role %q may not %s", role, action)
	}
}

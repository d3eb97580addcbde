package ports

import "context"

// Event kinds published by the order manager.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
	EventMenuUpdated        = "menu.updated"
)

// Notifier is the fire-and-forget notification sink. Delivery is
// at-most-once with no acknowledgment; a dropped event never corrupts
// order state, so publishing cannot fail the calling operation.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any)
	// PublishToRoom targets only clients subscribed to the given room.
	// Status changes use the order id as the room.
	PublishToRoom(ctx context.Context, room, event string, payload any)
}

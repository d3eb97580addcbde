package realtime

import (
	"context"
	"log/slog"
)

// NoopNotifier logs events without pushing them anywhere. Useful for local
// dev and tests that do not care about realtime delivery.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) Publish(_ context.Context, event string, _ any) {
	slog.Debug("event::broadcast", "event", event)
}

func (n *NoopNotifier) PublishToRoom(_ context.Context, room, event string, _ any) {
	slog.Debug("event::room", "event", event, "room", room)
}

package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Envelope is the wire format pushed to websocket clients.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub fans events out to connected websocket clients. Broadcasts reach
// everyone; room sends reach only clients that joined the room. Delivery
// is at-most-once and a slow client is dropped, never waited on.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish broadcasts an event to every connected client.
func (h *Hub) Publish(ctx context.Context, event string, payload any) {
	h.send(ctx, event, payload, func(*Client) bool { return true })
}

// PublishToRoom sends an event only to clients subscribed to room.
func (h *Hub) PublishToRoom(ctx context.Context, room, event string, payload any) {
	h.send(ctx, event, payload, func(c *Client) bool { return c.inRoom(room) })
}

func (h *Hub) send(ctx context.Context, event string, payload any, match func(*Client) bool) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.WarnContext(ctx, "dropping slow websocket client", "event", event)
		h.unregister(client)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

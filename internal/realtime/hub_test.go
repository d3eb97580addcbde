package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHub(t *testing.T) (*Hub, string) {
	t.Helper()

	hub := NewHub(slog.New(slog.DiscardHandler))
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, url := setupHub(t)

	first := dial(t, url)
	second := dial(t, url)
	waitForClients(t, hub, 2)

	hub.Publish(context.Background(), "menu.updated", nil)

	for _, conn := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, conn)
		assert.Equal(t, "menu.updated", env.Event)
	}
}

func TestRoomScopedPublish(t *testing.T) {
	hub, url := setupHub(t)

	joined := dial(t, url)
	bystander := dial(t, url)
	waitForClients(t, hub, 2)

	require.NoError(t, joined.WriteJSON(joinMessage{Action: "join", Room: "order-1"}))

	// no ack for joins, poll until the subscription lands
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.PublishToRoom(context.Background(), "order-1", "order.status_changed", map[string]string{"status": "preparing"})

		require.NoError(t, joined.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
		if _, data, err := joined.ReadMessage(); err == nil {
			var env Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			assert.Equal(t, "order.status_changed", env.Event)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("joined client never received the room event")
		}
	}

	// the bystander never joined the room and must see nothing
	require.NoError(t, bystander.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := bystander.ReadMessage()
	assert.Error(t, err)
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	hub, url := setupHub(t)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(joinMessage{Action: "join", Room: "order-9"}))

	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.PublishToRoom(context.Background(), "order-9", "order.status_changed", nil)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
		if _, _, err := conn.ReadMessage(); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never received the room event")
		}
	}

	require.NoError(t, conn.WriteJSON(joinMessage{Action: "leave", Room: "order-9"}))
	time.Sleep(100 * time.Millisecond)

	hub.PublishToRoom(context.Background(), "order-9", "order.status_changed", nil)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, url := setupHub(t)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// publishing with no clients is a no-op
	hub.Publish(context.Background(), "order.created", nil)
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/store"
)

func newTestHub() *WebSocketHub {
	return NewWebSocketHub(store.NewCardStore(model.Seed()), quietLogger())
}

func TestWebSocketHub_AddRemoveClient(t *testing.T) {
	hub := newTestHub()

	client := &WebSocketClient{
		hub:  hub,
		send: make(chan []byte, 10),
	}

	hub.addClient(client)
	if hub.ClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount())
	}

	hub.removeClient(client)
	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}

	hub.removeClient(client) // Should not panic
}

func TestWebSocketHub_RemoveClientClosesChannel(t *testing.T) {
	hub := newTestHub()

	client := &WebSocketClient{
		hub:  hub,
		send: make(chan []byte, 10),
	}

	hub.addClient(client)
	hub.removeClient(client)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("Channel should be closed")
		}
	default:
		t.Error("Channel should be closed and readable")
	}
}

func TestWebSocketHub_BroadcastToRemovedClient(t *testing.T) {
	hub := newTestHub()

	client := &WebSocketClient{
		hub:  hub,
		send: make(chan []byte, 10),
	}

	hub.addClient(client)
	hub.removeClient(client)

	// This should not panic even though client's channel is closed
	hub.broadcast([]byte(`{"test": "data"}`))
}

func TestWebSocketHub_TrySendRecovery(t *testing.T) {
	hub := newTestHub()

	client := &WebSocketClient{
		hub:  hub,
		send: make(chan []byte, 10),
	}
	close(client.send)

	hub.trySend(client, []byte(`test`))
}

func TestWebSocketHub_BroadcastFullBuffer(t *testing.T) {
	hub := newTestHub()

	client := &WebSocketClient{
		hub:  hub,
		send: make(chan []byte, 1),
	}
	hub.addClient(client)
	client.send <- []byte("first")

	hub.broadcast([]byte("second"))

	if hub.ClientCount() != 0 {
		t.Errorf("Expected client to be removed due to full buffer, got %d clients", hub.ClientCount())
	}
}

func TestWebSocketHub_OnChange(t *testing.T) {
	cardStore := store.NewCardStore(model.Seed())
	hub := NewWebSocketHub(cardStore, quietLogger())
	cardStore.Subscribe(hub)

	client := &WebSocketClient{
		hub:  hub,
		send: make(chan []byte, 10),
	}
	hub.addClient(client)

	cardStore.Commit("delete_card", func(c model.Collection) (model.Collection, error) {
		return c.DeleteCard("1"), nil
	})

	select {
	case msg := <-client.send:
		var received struct {
			Type string       `json:"type"`
			Op   string       `json:"op"`
			Data []model.Card `json:"data"`
		}
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if received.Type != "snapshot" || received.Op != "delete_card" {
			t.Errorf("Unexpected message header: %s/%s", received.Type, received.Op)
		}
		if len(received.Data) != 1 || received.Data[0].ID != "2" {
			t.Errorf("Unexpected snapshot: %+v", received.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Did not receive snapshot message")
	}
}

func TestWebSocketHub_ServeWS(t *testing.T) {
	cardStore := store.NewCardStore(model.Seed())
	hub := NewWebSocketHub(cardStore, quietLogger())
	cardStore.Subscribe(hub)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg WebSocketMessage
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "connected" {
		t.Fatalf("Expected connected message, got %+v (%v)", msg, err)
	}
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "snapshot" || msg.Op != "connect" {
		t.Fatalf("Expected initial snapshot, got %+v (%v)", msg, err)
	}

	cardStore.Commit("add_card", func(c model.Collection) (model.Collection, error) {
		next, _ := c.AddCard("GitHub", "", "")
		return next, nil
	})

	if err := conn.ReadJSON(&msg); err != nil || msg.Op != "add_card" {
		t.Fatalf("Expected add_card snapshot, got %+v (%v)", msg, err)
	}
	cards, ok := msg.Data.([]any)
	if !ok || len(cards) != 3 {
		t.Errorf("Expected 3 cards in snapshot, got %v", msg.Data)
	}
}

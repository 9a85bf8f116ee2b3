package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// SnapshotSource provides the collection sent to newly connected clients.
type SnapshotSource interface {
	Snapshot() model.Collection
}

// WebSocketHub manages WebSocket connections and broadcasts store changes.
type WebSocketHub struct {
	source SnapshotSource
	log    log.FieldLogger

	mu      sync.RWMutex
	clients map[*WebSocketClient]bool
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	id   string
	hub  *WebSocketHub
	conn *websocket.Conn
	send chan []byte
}

// WebSocketMessage is the JSON message sent to clients.
type WebSocketMessage struct {
	Type string `json:"type"`
	Op   string `json:"op,omitempty"`
	Data any    `json:"data"`
}

// NewWebSocketHub creates a new WebSocket hub.
func NewWebSocketHub(source SnapshotSource, logger log.FieldLogger) *WebSocketHub {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &WebSocketHub{
		source:  source,
		log:     logger,
		clients: make(map[*WebSocketClient]bool),
	}
}

// OnChange implements store.Subscriber. It runs inside the store's commit
// and must never block, so sends to slow clients are dropped.
func (h *WebSocketHub) OnChange(change store.Change) {
	data, err := snapshotMessage(change.Op, change.Collection)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal snapshot")
		return
	}
	h.broadcast(data)
}

func snapshotMessage(op string, c model.Collection) ([]byte, error) {
	return json.Marshal(WebSocketMessage{Type: "snapshot", Op: op, Data: c.Cards})
}

// broadcast sends a message to all connected clients.
func (h *WebSocketHub) broadcast(data []byte) {
	h.mu.RLock()
	clients := make([]*WebSocketClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.trySend(client, data)
	}
}

// trySend attempts to send data to a client, handling the case where
// the client's channel was closed between snapshot and send.
func (h *WebSocketHub) trySend(client *WebSocketClient, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed by removeClient - client already cleaned up
		}
	}()

	select {
	case client.send <- data:
	default:
		// Client buffer full, close it
		h.log.WithField("client_id", client.id).Warn("dropping slow WebSocket client")
		h.removeClient(client)
	}
}

// connect queues the greeting and the current snapshot, then registers the
// client. Holding the hub lock across all three means any commit the
// snapshot missed is broadcast to this client afterwards.
func (h *WebSocketHub) connect(client *WebSocketClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	welcome := WebSocketMessage{
		Type: "connected",
		Data: map[string]string{"client_id": client.id},
	}
	if data, err := json.Marshal(welcome); err == nil {
		client.send <- data
	}
	if data, err := snapshotMessage("connect", h.source.Snapshot()); err == nil {
		client.send <- data
	}
	h.clients[client] = true
}

func (h *WebSocketHub) addClient(client *WebSocketClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *WebSocketHub) removeClient(client *WebSocketClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// ServeWS handles WebSocket connection requests.
func (h *WebSocketHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &WebSocketClient{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.connect(client)
	h.log.WithField("client_id", client.id).Debug("WebSocket client connected")

	go client.writePump()
	go client.readPump()
}

// readPump reads messages from the WebSocket connection.
// We don't expect client messages, but we need to read to detect disconnects.
func (c *WebSocketClient) readPump() {
	defer func() {
		// Closing send signals writePump to exit; writePump closes the connection
		c.hub.removeClient(c)
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("client_id", c.id).Warn("WebSocket read error")
			}
			break
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per message so every frame is a complete JSON document
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ store.Subscriber = (*WebSocketHub)(nil)

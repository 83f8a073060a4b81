package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/page-builder/backend/internal/builder"
	"github.com/page-builder/backend/internal/models"
	"go.uber.org/zap"
)

// WebSocket message types
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeLayout    = "layout"
	MsgTypePong      = "pong"
	MsgTypeError     = "error"
)

const (
	writeWait   = 10 * time.Second
	sendBacklog = 16
)

// WSMessage is the envelope for every WebSocket message
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// wsClient is one connected editor. Writes go through send so a single
// goroutine owns the connection's write side.
type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// Hub pushes the layout to every connected editor after each change
type Hub struct {
	store    *builder.Store
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}

	unsubscribe func()
}

// NewHub creates a hub and subscribes it to the store
func NewHub(store *builder.Store, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		store: store,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		logger:  logger.Named("ws"),
		clients: make(map[*wsClient]struct{}),
	}
	h.unsubscribe = store.Subscribe(h.broadcast)
	return h
}

// Close detaches the hub from the store and disconnects every client
func (h *Hub) Close() {
	h.unsubscribe()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}

// Clients returns the number of connected editors
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and streams layout updates
func (h *Hub) HandleWebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &wsClient{conn: conn, send: make(chan WSMessage, sendBacklog)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("editor connected", zap.Int("clients", h.Clients()))

	done := make(chan struct{})
	go h.writeLoop(client, done)

	h.trySend(client, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})
	h.trySend(client, layoutMessage(h.store.Layout()))

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("connection error", zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			h.trySend(client, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		default:
			payload, _ := json.Marshal(map[string]string{"message": "Unknown message type: " + msg.Type})
			h.trySend(client, WSMessage{Type: MsgTypeError, Payload: payload, Timestamp: time.Now().UnixMilli()})
		}
	}

	h.remove(client)
	<-done
	conn.Close()
	h.logger.Debug("editor disconnected", zap.Int("clients", h.Clients()))
	return nil
}

func (h *Hub) writeLoop(client *wsClient, done chan<- struct{}) {
	defer close(done)
	for msg := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteJSON(msg); err != nil {
			h.logger.Debug("write failed", zap.Error(err))
			client.conn.Close()
			h.remove(client)
			// Drain so senders never block on a dead client.
			for range client.send {
			}
			return
		}
	}
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// trySend queues msg unless the client is gone or too far behind.
func (h *Hub) trySend(client *wsClient, msg WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- msg:
	default:
		h.logger.Warn("dropping message for slow editor", zap.String("type", msg.Type))
	}
}

func (h *Hub) broadcast(l models.Layout) {
	msg := layoutMessage(l)
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.trySend(c, msg)
	}
}

func layoutMessage(l models.Layout) WSMessage {
	payload, _ := json.Marshal(l)
	return WSMessage{Type: MsgTypeLayout, Payload: payload, Timestamp: time.Now().UnixMilli()}
}

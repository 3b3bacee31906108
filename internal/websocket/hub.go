package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	TypeSignedOut    = "SIGNED_OUT"
	TypeTokenExpired = "TOKEN_EXPIRED"
)

// Message is a session notification. Every message ends the session it is
// sent to, so the connection is closed after it is written.
type Message struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// NewMessage creates a Message stamped with the current time.
func NewMessage(typ string) Message {
	return Message{Type: typ, At: time.Now().UTC()}
}

// Hub tracks listening clients by session ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Notify sends msg to every client listening on sessionID and returns the
// number of clients it was queued for.
func (h *Hub) Notify(sessionID string, msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal notification", "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.clients {
		if c.sessionID != sessionID {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
			h.logger.Warn("dropping notification", "session_id", sessionID, "type", msg.Type)
		}
	}
	return sent
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

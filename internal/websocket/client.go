package websocket

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one websocket listener bound to a session.
type Client struct {
	hub       *Hub
	conn      *ws.Conn
	sessionID string
	expiresAt time.Time
	send      chan []byte
}

// NewClient creates a Client for sessionID. A TOKEN_EXPIRED message is sent
// when expiresAt passes.
func NewClient(hub *Hub, conn *ws.Conn, sessionID string, expiresAt time.Time) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		sessionID: sessionID,
		expiresAt: expiresAt,
		send:      make(chan []byte, sendBufferSize),
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards incoming messages until the connection closes.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, _, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
	}
}

// writePump delivers the first notification, or TOKEN_EXPIRED once the
// session expires, then closes the connection. It pings in between.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	expiry := time.NewTimer(time.Until(c.expiresAt))
	defer expiry.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.finish(ctx, msg)
			return
		case <-expiry.C:
			data, _ := json.Marshal(NewMessage(TypeTokenExpired))
			c.finish(ctx, data)
			return
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) finish(ctx context.Context, msg []byte) {
	if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
		return
	}
	c.conn.Close(ws.StatusNormalClosure, "session ended")
}

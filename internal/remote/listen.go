package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/listwise/internal/domain"
)

type sessionMessage struct {
	Type string `json:"type"`
}

// Listen subscribes to server-side session notifications for the current
// session. It blocks until the session ends, the connection drops, or ctx is
// done. A SIGNED_OUT or TOKEN_EXPIRED notification clears the local session
// and is passed on to OnAuthStateChange listeners.
func (c *Client) Listen(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	u := c.baseURL + "/auth/events"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := ws.Dial(ctx, u, &ws.DialOptions{HTTPClient: c.httpClient, HTTPHeader: header})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			c.clearSession(token, domain.TokenExpired)
			return ErrSessionExpired
		}
		return fmt.Errorf("dial events: %w", err)
	}
	defer conn.CloseNow()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.Canceled) || ws.CloseStatus(err) == ws.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("read events: %w", err)
		}

		var msg sessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("bad session notification", "error", err)
			continue
		}

		switch domain.AuthEventType(msg.Type) {
		case domain.SignedOut, domain.TokenExpired:
			if c.clearSession(token, domain.AuthEventType(msg.Type)) {
				c.logger.Info("session ended by server", "type", msg.Type)
			}
			conn.Close(ws.StatusNormalClosure, "")
			return nil
		default:
			c.logger.Debug("ignoring session notification", "type", msg.Type)
		}
	}
}

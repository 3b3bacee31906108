package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/listwise/internal/auth"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		expiresAt: time.Now().Add(time.Hour),
		send:      make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "s1")
	c2 := mockClient(hub, "s2")

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "s1")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestNotifyTargetsSession(t *testing.T) {
	hub := NewHub(slog.Default())

	mine := mockClient(hub, "s1")
	other := mockClient(hub, "s2")
	hub.Register(mine)
	hub.Register(other)
	defer hub.Unregister(mine)
	defer hub.Unregister(other)

	if n := hub.Notify("s1", NewMessage(TypeSignedOut)); n != 1 {
		t.Fatalf("Notify queued for %d clients, want 1", n)
	}

	select {
	case data := <-mine.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != TypeSignedOut {
			t.Errorf("type = %q, want %q", got.Type, TypeSignedOut)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}

	select {
	case <-other.send:
		t.Error("other session should not be notified")
	default:
	}
}

func TestNotifyEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	if n := hub.Notify("nobody", NewMessage(TypeSignedOut)); n != 0 {
		t.Errorf("Notify = %d, want 0", n)
	}
}

func TestNotifyFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, "s1")
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Notify("s1", NewMessage(TypeSignedOut))
	}

	// This should drop the message, not block
	if n := hub.Notify("s1", NewMessage(TypeSignedOut)); n != 0 {
		t.Errorf("Notify on full buffer = %d, want 0", n)
	}
	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, "shared")
			hub.Register(c)
			hub.Notify("shared", NewMessage(TypeSignedOut))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func serveSession(hub *Hub, sessionID string, expiresAt time.Time) *httptest.Server {
	h := HandleWebSocket(hub, slog.Default())
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithAuth(r.Context(), auth.AuthContext{SessionID: sessionID, ExpiresAt: expiresAt})
		h(w, r.WithContext(ctx))
	}))
}

func readMessage(t *testing.T, srv *httptest.Server) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func TestHandleWebSocketExpiry(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := serveSession(hub, "s1", time.Now().Add(50*time.Millisecond))
	defer srv.Close()

	msg := readMessage(t, srv)
	if msg.Type != TypeTokenExpired {
		t.Errorf("type = %q, want %q", msg.Type, TypeTokenExpired)
	}
}

func TestHandleWebSocketSignedOut(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := serveSession(hub, "s1", time.Now().Add(time.Hour))
	defer srv.Close()

	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if hub.Notify("s1", NewMessage(TypeSignedOut)) > 0 {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	msg := readMessage(t, srv)
	if msg.Type != TypeSignedOut {
		t.Errorf("type = %q, want %q", msg.Type, TypeSignedOut)
	}
}

func TestHandleWebSocketRequiresAuth(t *testing.T) {
	hub := NewHub(slog.Default())
	req := httptest.NewRequest("GET", "/auth/events", nil)
	rec := httptest.NewRecorder()
	HandleWebSocket(hub, slog.Default())(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// Package remote is the client for the listwise data service. It covers the
// table-like REST resources and the session boundary: sign-up, sign-in,
// sign-out and auth-state notifications.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/model"
)

var (
	ErrNotSignedIn    = errors.New("not signed in")
	ErrSessionExpired = errors.New("session expired")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: status %d", e.Status)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// Client talks to the data service and holds the current session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.RWMutex
	session   *domain.Session
	listeners map[int]func(domain.AuthEvent)
	nextID    int
}

// NewClient creates a Client for the service at baseURL. Requests carry no
// timeout of their own; cancel through the context.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
		listeners:  make(map[int]func(domain.AuthEvent)),
	}
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// OnAuthStateChange registers fn for auth events and returns a function that
// removes it. fn is called without any client lock held.
func (c *Client) OnAuthStateChange(fn func(domain.AuthEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// setSession swaps the session and notifies listeners in registration order.
func (c *Client) setSession(sess *domain.Session, typ domain.AuthEventType) {
	c.mu.Lock()
	c.session = sess
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domain.AuthEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.mu.Unlock()

	ev := domain.AuthEvent{Type: typ}
	if sess != nil {
		s := *sess
		ev.Session = &s
	}
	for _, fn := range fns {
		fn(ev)
	}
}

// clearSession drops the session only if it is still token, so a stale
// notification cannot sign out a newer session.
func (c *Client) clearSession(token string, typ domain.AuthEventType) bool {
	c.mu.RLock()
	current := c.session
	c.mu.RUnlock()
	if current == nil || current.AccessToken != token {
		return false
	}
	c.setSession(nil, typ)
	return true
}

func (c *Client) token() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", ErrNotSignedIn
	}
	return c.session.AccessToken, nil
}

// do sends a JSON request. When auth is set the bearer token is attached.
// A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		token, err := c.token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil {
		body.Error = strings.TrimSpace(string(data))
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error, Fields: body.Fields}
}

func sessionFrom(ar model.AuthResponse) *domain.Session {
	return &domain.Session{
		AccessToken: ar.AccessToken,
		UserID:      ar.User.ID,
		Email:       ar.User.Email,
		ExpiresAt:   ar.ExpiresAt,
	}
}

// SignUp creates an account and signs in as it.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return c.authenticate(ctx, "/auth/token", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*domain.Session, error) {
	var ar model.AuthResponse
	creds := model.Credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, path, false, creds, &ar); err != nil {
		return nil, err
	}
	sess := sessionFrom(ar)
	c.setSession(sess, domain.SignedIn)
	return c.Session(), nil
}

// Restore adopts a previously issued session without a network call.
func (c *Client) Restore(sess domain.Session) error {
	if sess.AccessToken == "" {
		return ErrNotSignedIn
	}
	if sess.Expired(time.Now()) {
		return ErrSessionExpired
	}
	c.setSession(&sess, domain.SignedIn)
	return nil
}

// SignOut revokes the session server-side. The local session is cleared and
// listeners are told even when the request fails.
func (c *Client) SignOut(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return nil
	}
	reqErr := c.do(ctx, http.MethodPost, "/auth/logout", true, nil, nil)
	c.clearSession(token, domain.SignedOut)
	if reqErr != nil {
		return fmt.Errorf("sign out: %w", reqErr)
	}
	return nil
}

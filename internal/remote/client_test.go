package remote

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/listwise/internal/database"
	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/model"
	"github.com/dukerupert/listwise/internal/server"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T) (*httptest.Server, *server.Server) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := server.New(db, server.Config{JWTSecret: "test-secret-0123456789", SessionTTL: time.Hour}, discardLogger())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, srv
}

func signedInClient(t *testing.T, baseURL, email string) *Client {
	t.Helper()
	c := NewClient(baseURL, discardLogger())
	_, err := c.SignUp(context.Background(), email, "hunter22")
	require.NoError(t, err)
	return c
}

func TestSignUpSignInSignOut(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()

	var events []domain.AuthEventType
	c := NewClient(ts.URL, discardLogger())
	unsubscribe := c.OnAuthStateChange(func(ev domain.AuthEvent) {
		events = append(events, ev.Type)
	})
	defer unsubscribe()

	sess, err := c.SignUp(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sess.Email)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.UserID)

	_, err = c.SignUp(ctx, "alice@example.com", "hunter22")
	assert.Equal(t, http.StatusConflict, StatusCode(err))

	require.NoError(t, c.SignOut(ctx))
	assert.Nil(t, c.Session())

	_, err = c.SignIn(ctx, "alice@example.com", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))

	again, err := c.SignIn(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, again.UserID)

	assert.Equal(t, []domain.AuthEventType{domain.SignedIn, domain.SignedOut, domain.SignedIn}, events)
}

func TestSignUpValidation(t *testing.T) {
	ts, _ := startServer(t)

	c := NewClient(ts.URL, discardLogger())
	_, err := c.SignUp(context.Background(), "not-an-email", "x")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Fields, "email")
	assert.Contains(t, apiErr.Fields, "password")
}

func TestRevokedTokenRejected(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()

	c := signedInClient(t, ts.URL, "alice@example.com")
	stale := *c.Session()
	require.NoError(t, c.SignOut(ctx))

	other := NewClient(ts.URL, discardLogger())
	require.NoError(t, other.Restore(stale))
	_, err := other.FetchLists(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestRestore(t *testing.T) {
	c := NewClient("http://unused", discardLogger())

	assert.ErrorIs(t, c.Restore(domain.Session{}), ErrNotSignedIn)
	expired := domain.Session{AccessToken: "t", ExpiresAt: time.Now().Add(-time.Minute)}
	assert.ErrorIs(t, c.Restore(expired), ErrSessionExpired)

	ok := domain.Session{AccessToken: "t", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, c.Restore(ok))
	assert.Equal(t, "u", c.Session().UserID)
}

func TestRequiresSession(t *testing.T) {
	c := NewClient("http://unused", discardLogger())
	_, err := c.FetchLists(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestListAndItemRoundTrip(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()
	c := signedInClient(t, ts.URL, "alice@example.com")

	budget := 150.0
	list, err := c.InsertList(ctx, model.NewList{Name: "Weekly", Category: "Groceries", ListBudget: &budget})
	require.NoError(t, err)
	assert.Equal(t, c.Session().UserID, list.UserID)
	assert.Equal(t, "active", list.Status)

	items, err := c.InsertItems(ctx, []model.NewItem{
		{ListID: list.ID, Name: "Milk", Quantity: 2, UnitPrice: 3.5},
		{ListID: list.ID, Name: "Bread", Quantity: 1, UnitPrice: 2.25, Category: "Bakery", ItemOrder: 1},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Dairy", items[0].Category, "empty category is filled in")

	purchased := true
	updated, err := c.UpdateItem(ctx, items[0].ID, model.ItemPatch{IsPurchased: &purchased})
	require.NoError(t, err)
	assert.True(t, updated.IsPurchased)
	assert.Equal(t, 2, updated.Quantity)

	status := "completed"
	ul, err := c.UpdateList(ctx, list.ID, model.ListPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "completed", ul.Status)

	got, err := c.FetchList(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Milk", got.Items[0].Name)

	require.NoError(t, c.DeleteItem(ctx, items[1].ID))
	require.NoError(t, c.DeleteList(ctx, list.ID))

	lists, err := c.FetchLists(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)

	err = c.DeleteList(ctx, list.ID)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestRowIsolation(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()
	alice := signedInClient(t, ts.URL, "alice@example.com")
	bob := signedInClient(t, ts.URL, "bob@example.com")

	list, err := alice.InsertList(ctx, model.NewList{Name: "Private"})
	require.NoError(t, err)

	_, err = bob.FetchList(ctx, list.ID)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	_, err = bob.InsertItems(ctx, []model.NewItem{{ListID: list.ID, Name: "Sneaky", Quantity: 1}})
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	lists, err := bob.FetchLists(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestUnknownPatchFieldRejected(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()
	c := signedInClient(t, ts.URL, "alice@example.com")

	list, err := c.InsertList(ctx, model.NewList{Name: "Weekly"})
	require.NoError(t, err)

	err = c.do(ctx, http.MethodPatch, "/rest/lists/"+list.ID, true, map[string]any{"nmae": "typo"}, nil)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestBudgets(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()
	c := signedInClient(t, ts.URL, "alice@example.com")

	none, err := c.FindBudget(ctx, 2026, 10)
	require.NoError(t, err)
	assert.Nil(t, none)

	b, err := c.InsertBudget(ctx, model.NewBudget{Year: 2026, Month: 10, Amount: 800})
	require.NoError(t, err)

	_, err = c.InsertBudget(ctx, model.NewBudget{Year: 2026, Month: 10, Amount: 900})
	assert.Equal(t, http.StatusConflict, StatusCode(err))

	found, err := c.FindBudget(ctx, 2026, 10)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, b.ID, found.ID)

	amount := 950.0
	updated, err := c.UpdateBudget(ctx, b.ID, model.BudgetPatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 950.0, updated.Amount)

	all, err := c.FetchBudgets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPurchases(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()
	c := signedInClient(t, ts.URL, "alice@example.com")

	list, err := c.InsertList(ctx, model.NewList{Name: "Weekly"})
	require.NoError(t, err)

	at := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)
	created, err := c.InsertPurchases(ctx, []model.NewPurchase{
		{ListID: &list.ID, ItemName: "Milk", Quantity: 2, UnitPrice: 3.5, PurchasedAt: at},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	require.NoError(t, c.DeleteList(ctx, list.ID))

	history, err := c.FetchPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].ListID)
	assert.True(t, history[0].PurchasedAt.Equal(at))
}

func TestListenReceivesSignOut(t *testing.T) {
	ts, srv := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	primary := signedInClient(t, ts.URL, "alice@example.com")
	watcher := NewClient(ts.URL, discardLogger())
	require.NoError(t, watcher.Restore(*primary.Session()))

	var mu sync.Mutex
	var got []domain.AuthEvent
	watcher.OnAuthStateChange(func(ev domain.AuthEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() { done <- watcher.Listen(ctx) }()

	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, primary.SignOut(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("Listen did not return after sign-out")
	}

	assert.Nil(t, watcher.Session())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, domain.SignedOut, got[0].Type)
	assert.Nil(t, got[0].Session)
}

func TestListenRevokedSession(t *testing.T) {
	ts, _ := startServer(t)
	ctx := context.Background()

	primary := signedInClient(t, ts.URL, "alice@example.com")
	stale := *primary.Session()
	require.NoError(t, primary.SignOut(ctx))

	watcher := NewClient(ts.URL, discardLogger())
	require.NoError(t, watcher.Restore(stale))

	err := watcher.Listen(ctx)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Nil(t, watcher.Session())
}

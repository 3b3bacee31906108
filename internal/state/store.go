// Package state holds the client's single in-memory snapshot of session,
// domain data and UI status. The actions on Store are the only way to change
// it; each one talks to the remote service first and then reconciles local
// state, except UpdateItemOrder which applies optimistically and rolls back.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/mapper"
	"github.com/dukerupert/listwise/internal/model"
)

var (
	ErrNotSignedIn   = errors.New("not signed in")
	ErrListNotFound  = errors.New("list not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidTheme  = errors.New("invalid theme")
	ErrUnexpectedRow = errors.New("unexpected response from service")
)

// DefaultErrorTTL is how long an error stays in the error slot.
const DefaultErrorTTL = 5 * time.Second

// Backend is the table surface of the remote data service.
type Backend interface {
	FetchLists(ctx context.Context) ([]model.List, error)
	FetchList(ctx context.Context, id string) (*model.List, error)
	InsertList(ctx context.Context, nl model.NewList) (*model.List, error)
	UpdateList(ctx context.Context, id string, p model.ListPatch) (*model.List, error)
	DeleteList(ctx context.Context, id string) error

	InsertItems(ctx context.Context, items []model.NewItem) ([]model.Item, error)
	UpdateItem(ctx context.Context, id string, p model.ItemPatch) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error

	FetchBudgets(ctx context.Context) ([]model.Budget, error)
	FindBudget(ctx context.Context, year, month int) (*model.Budget, error)
	InsertBudget(ctx context.Context, nb model.NewBudget) (*model.Budget, error)
	UpdateBudget(ctx context.Context, id string, p model.BudgetPatch) (*model.Budget, error)

	FetchPurchases(ctx context.Context) ([]model.Purchase, error)
	InsertPurchases(ctx context.Context, in []model.NewPurchase) ([]model.Purchase, error)
}

// Authenticator is the session boundary. OnAuthStateChange returns a
// function that removes the listener.
type Authenticator interface {
	Session() *domain.Session
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn func(domain.AuthEvent)) func()
}

// Preferences persists UI settings across restarts.
type Preferences interface {
	Theme() (domain.Theme, error)
	SetTheme(t domain.Theme) error
	HasSeenOnboarding() (bool, error)
	SetHasSeenOnboarding(seen bool) error
}

// State is a snapshot of the store. Values returned by Store.Snapshot and
// passed to subscribers are deep copies.
type State struct {
	Session *domain.Session

	Lists        []domain.ShoppingList
	Budgets      []domain.Budget
	Purchases    []domain.Purchase
	PriceHistory []domain.PriceHistoryEntry

	CurrentPage       domain.Page
	CurrentListID     string
	HasSeenOnboarding bool
	Theme             domain.Theme

	Loading map[string]bool
	Error   string
}

// IsLoading reports whether the action keyed by key is in flight.
func (st State) IsLoading(key string) bool {
	return st.Loading[key]
}

// FindList returns the list with the given id, or nil.
func (st State) FindList(id string) *domain.ShoppingList {
	if i := findList(st.Lists, id); i >= 0 {
		l := st.Lists[i]
		return &l
	}
	return nil
}

// CurrentList is the list the detail page shows, or nil.
func (st State) CurrentList() *domain.ShoppingList {
	if st.CurrentListID == "" {
		return nil
	}
	return st.FindList(st.CurrentListID)
}

func (st State) clone() State {
	c := st
	if st.Session != nil {
		sess := *st.Session
		c.Session = &sess
	}
	c.Lists = cloneLists(st.Lists)
	c.Budgets = append([]domain.Budget{}, st.Budgets...)
	c.Purchases = make([]domain.Purchase, len(st.Purchases))
	for i, p := range st.Purchases {
		if p.ListID != nil {
			id := *p.ListID
			p.ListID = &id
		}
		c.Purchases[i] = p
	}
	c.PriceHistory = make([]domain.PriceHistoryEntry, len(st.PriceHistory))
	for i, e := range st.PriceHistory {
		c.PriceHistory[i] = e.Clone()
	}
	c.Loading = make(map[string]bool, len(st.Loading))
	for k, v := range st.Loading {
		c.Loading[k] = v
	}
	return c
}

func cloneLists(lists []domain.ShoppingList) []domain.ShoppingList {
	out := make([]domain.ShoppingList, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}

func findList(lists []domain.ShoppingList, id string) int {
	for i := range lists {
		if lists[i].ID == id {
			return i
		}
	}
	return -1
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithErrorTTL sets how long errors stay in the error slot. Zero keeps them
// until cleared.
func WithErrorTTL(d time.Duration) Option {
	return func(s *Store) { s.errorTTL = d }
}

// WithPriceKey sets how purchases are grouped into price history entries.
func WithPriceKey(key mapper.PriceKey) Option {
	return func(s *Store) { s.priceKey = key }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithPreferences(p Preferences) Option {
	return func(s *Store) { s.prefs = p }
}

type subscriber struct {
	id int
	fn func(State)
}

type Store struct {
	backend  Backend
	auth     Authenticator
	prefs    Preferences
	logger   *slog.Logger
	errorTTL time.Duration
	priceKey mapper.PriceKey
	now      func() time.Time

	mu     sync.Mutex
	state  State
	gen    int
	errSeq int
	errTmr *time.Timer
	subs   []subscriber
	nextID int

	ctx        context.Context
	cancel     context.CancelFunc
	bg         sync.WaitGroup
	unlistenFn func()
}

// New creates a store over backend and auth. An existing session is mirrored
// but no data is fetched until FetchInitialData or a later sign-in.
func New(backend Backend, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		auth:     auth,
		logger:   slog.Default(),
		errorTTL: DefaultErrorTTL,
		priceKey: mapper.DefaultPriceKey,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "state")
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.state = State{
		CurrentPage: domain.PageMyLists,
		Theme:       domain.ThemeSystem,
		Loading:     make(map[string]bool),
	}
	s.loadPreferences()
	if sess := auth.Session(); sess != nil {
		c := *sess
		s.state.Session = &c
	}

	s.unlistenFn = auth.OnAuthStateChange(func(ev domain.AuthEvent) {
		if s.applyAuthEvent(ev) {
			s.background(func(ctx context.Context) {
				_ = s.FetchInitialData(ctx)
			})
		}
	})
	return s
}

func (s *Store) loadPreferences() {
	if s.prefs == nil {
		return
	}
	if t, err := s.prefs.Theme(); err != nil {
		s.logger.Warn("failed to load theme", "error", err)
	} else {
		s.state.Theme = t
	}
	seen, err := s.prefs.HasSeenOnboarding()
	if err != nil {
		s.logger.Warn("failed to load onboarding flag", "error", err)
	}
	s.state.HasSeenOnboarding = seen
	if !seen {
		s.state.CurrentPage = domain.PageWelcome
	}
}

// Close stops listening for auth events, cancels background work and waits
// for it to finish.
func (s *Store) Close() {
	s.unlistenFn()
	s.cancel()
	s.bg.Wait()
	s.mu.Lock()
	if s.errTmr != nil {
		s.errTmr.Stop()
	}
	s.mu.Unlock()
}

// Wait blocks until background work started by actions has finished.
func (s *Store) Wait() {
	s.bg.Wait()
}

func (s *Store) background(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn(s.ctx)
	}()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every change. fn may be
// called from any goroutine and must not block.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// update applies fn under the lock and then notifies subscribers.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.publishLocked()
}

// commit is update for results of remote calls made on behalf of the
// session generation gen. Once the signed-in user has changed the result
// belongs to nobody and fn is not run.
func (s *Store) commit(gen int, fn func(st *State)) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding result for a previous session")
		return false
	}
	fn(&s.state)
	s.publishLocked()
	return true
}

// publishLocked releases the lock and hands a snapshot to every subscriber.
func (s *Store) publishLocked() {
	snap := s.state.clone()
	fns := make([]func(State), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) read(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// begin raises the loading flag for key and returns the function that
// lowers it.
func (s *Store) begin(key string) func() {
	s.update(func(st *State) { st.Loading[key] = true })
	return func() {
		s.update(func(st *State) { delete(st.Loading, key) })
	}
}

// fail logs err, puts msg in the error slot and returns err wrapped with op.
func (s *Store) fail(op, msg string, err error) error {
	s.logger.Error(op+" failed", "error", err)
	s.setError(msg)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) setError(msg string) {
	s.update(func(st *State) {
		st.Error = msg
		s.errSeq++
		if s.errTmr != nil {
			s.errTmr.Stop()
			s.errTmr = nil
		}
		if s.errorTTL > 0 {
			seq := s.errSeq
			s.errTmr = time.AfterFunc(s.errorTTL, func() { s.dismissError(seq) })
		}
	})
}

func (s *Store) dismissError(seq int) {
	s.mu.Lock()
	current := s.errSeq == seq && s.state.Error != ""
	s.mu.Unlock()
	if !current {
		return
	}
	s.update(func(st *State) {
		if s.errSeq == seq {
			st.Error = ""
		}
	})
}

// ClearError empties the error slot.
func (s *Store) ClearError() {
	s.update(func(st *State) {
		st.Error = ""
		s.errSeq++
		if s.errTmr != nil {
			s.errTmr.Stop()
			s.errTmr = nil
		}
	})
}

// generation identifies the signed-in user for as long as it stays signed
// in. Actions capture it before their remote call and commit with it.
func (s *Store) generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// user returns the signed-in user's id with the current generation.
func (s *Store) user() (string, int, error) {
	var (
		id  string
		gen int
	)
	s.read(func(st *State) {
		if st.Session != nil {
			id = st.Session.UserID
		}
		gen = s.gen
	})
	if id == "" {
		return "", gen, ErrNotSignedIn
	}
	return id, gen, nil
}

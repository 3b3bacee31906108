package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/model"
)

var errBoom = errors.New("boom")

// gate blocks a fake call until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

// fakeBackend is an in-memory Backend for a single user.
type fakeBackend struct {
	mu        sync.Mutex
	now       time.Time
	seq       int
	lists     []model.List
	items     []model.Item
	budgets   []model.Budget
	purchases []model.Purchase

	errs     map[string]error
	itemErrs map[string]error
	gates    map[string]*gate
	calls    map[string]int
}

func newFakeBackend(now time.Time) *fakeBackend {
	return &fakeBackend{
		now:      now,
		errs:     make(map[string]error),
		itemErrs: make(map[string]error),
		gates:    make(map[string]*gate),
		calls:    make(map[string]int),
	}
}

func (f *fakeBackend) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
}

func (f *fakeBackend) block(method string) *gate {
	g := newGate()
	f.mu.Lock()
	f.gates[method] = g
	f.mu.Unlock()
	return g
}

func (f *fakeBackend) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeBackend) enter(method string) error {
	f.mu.Lock()
	f.calls[method]++
	g := f.gates[method]
	err := f.errs[method]
	f.mu.Unlock()

	if g != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	return err
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeBackend) withItems(l model.List) model.List {
	l.Items = nil
	for _, it := range f.items {
		if it.ListID == l.ID {
			l.Items = append(l.Items, it)
		}
	}
	sort.SliceStable(l.Items, func(a, b int) bool { return l.Items[a].ItemOrder < l.Items[b].ItemOrder })
	return l
}

func (f *fakeBackend) findList(id string) int {
	for i := range f.lists {
		if f.lists[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeBackend) FetchLists(ctx context.Context) ([]model.List, error) {
	if err := f.enter("FetchLists"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.List, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, f.withItems(l))
	}
	return out, nil
}

func (f *fakeBackend) FetchList(ctx context.Context, id string) (*model.List, error) {
	if err := f.enter("FetchList"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findList(id)
	if i < 0 {
		return nil, nil
	}
	l := f.withItems(f.lists[i])
	return &l, nil
}

func (f *fakeBackend) InsertList(ctx context.Context, nl model.NewList) (*model.List, error) {
	if err := f.enter("InsertList"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := model.List{
		ID:         f.nextID("list"),
		UserID:     nl.UserID,
		Name:       nl.Name,
		Category:   nl.Category,
		Status:     string(domain.StatusActive),
		ListBudget: nl.ListBudget,
		CreatedAt:  f.now,
	}
	f.lists = append(f.lists, l)
	return &l, nil
}

func (f *fakeBackend) UpdateList(ctx context.Context, id string, p model.ListPatch) (*model.List, error) {
	if err := f.enter("UpdateList"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findList(id)
	if i < 0 {
		return nil, errors.New("not found")
	}
	l := &f.lists[i]
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Category != nil {
		l.Category = *p.Category
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.IsPinned != nil {
		l.IsPinned = *p.IsPinned
	}
	if p.ListBudget != nil {
		l.ListBudget = p.ListBudget
	}
	out := f.withItems(*l)
	return &out, nil
}

func (f *fakeBackend) DeleteList(ctx context.Context, id string) error {
	if err := f.enter("DeleteList"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findList(id)
	if i < 0 {
		return errors.New("not found")
	}
	f.lists = append(f.lists[:i], f.lists[i+1:]...)
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ListID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	for j := range f.purchases {
		if f.purchases[j].ListID != nil && *f.purchases[j].ListID == id {
			f.purchases[j].ListID = nil
		}
	}
	return nil
}

func (f *fakeBackend) InsertItems(ctx context.Context, in []model.NewItem) ([]model.Item, error) {
	if err := f.enter("InsertItems"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Item, 0, len(in))
	for _, ni := range in {
		it := model.Item{
			ID:          f.nextID("item"),
			ListID:      ni.ListID,
			UserID:      ni.UserID,
			Name:        ni.Name,
			Quantity:    ni.Quantity,
			UnitPrice:   ni.UnitPrice,
			Category:    ni.Category,
			IsPurchased: ni.IsPurchased,
			ItemOrder:   ni.ItemOrder,
			CreatedAt:   f.now,
		}
		f.items = append(f.items, it)
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeBackend) UpdateItem(ctx context.Context, id string, p model.ItemPatch) (*model.Item, error) {
	if err := f.enter("UpdateItem"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.itemErrs[id]; err != nil {
		return nil, err
	}
	for i := range f.items {
		it := &f.items[i]
		if it.ID != id {
			continue
		}
		if p.Name != nil {
			it.Name = *p.Name
		}
		if p.Quantity != nil {
			it.Quantity = *p.Quantity
		}
		if p.UnitPrice != nil {
			it.UnitPrice = *p.UnitPrice
		}
		if p.Category != nil {
			it.Category = *p.Category
		}
		if p.IsPurchased != nil {
			it.IsPurchased = *p.IsPurchased
		}
		if p.ItemOrder != nil {
			it.ItemOrder = *p.ItemOrder
		}
		out := *it
		return &out, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) DeleteItem(ctx context.Context, id string) error {
	if err := f.enter("DeleteItem"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeBackend) FetchBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := f.enter("FetchBudgets"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Budget(nil), f.budgets...), nil
}

func (f *fakeBackend) FindBudget(ctx context.Context, year, month int) (*model.Budget, error) {
	if err := f.enter("FindBudget"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.budgets {
		if b.Year == year && b.Month == month {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) InsertBudget(ctx context.Context, nb model.NewBudget) (*model.Budget, error) {
	if err := f.enter("InsertBudget"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := model.Budget{ID: f.nextID("budget"), UserID: nb.UserID, Year: nb.Year, Month: nb.Month, Amount: nb.Amount, CreatedAt: f.now}
	f.budgets = append(f.budgets, b)
	return &b, nil
}

func (f *fakeBackend) UpdateBudget(ctx context.Context, id string, p model.BudgetPatch) (*model.Budget, error) {
	if err := f.enter("UpdateBudget"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.budgets {
		if f.budgets[i].ID == id {
			if p.Amount != nil {
				f.budgets[i].Amount = *p.Amount
			}
			b := f.budgets[i]
			return &b, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) FetchPurchases(ctx context.Context) ([]model.Purchase, error) {
	if err := f.enter("FetchPurchases"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Purchase(nil), f.purchases...), nil
}

func (f *fakeBackend) InsertPurchases(ctx context.Context, in []model.NewPurchase) ([]model.Purchase, error) {
	if err := f.enter("InsertPurchases"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Purchase, 0, len(in))
	for _, np := range in {
		p := model.Purchase{
			ID:          f.nextID("purchase"),
			UserID:      np.UserID,
			ListID:      np.ListID,
			ItemName:    np.ItemName,
			Quantity:    np.Quantity,
			UnitPrice:   np.UnitPrice,
			PurchasedAt: np.PurchasedAt,
		}
		f.purchases = append(f.purchases, p)
		out = append(out, p)
	}
	return out, nil
}

// fakeAuth is an Authenticator whose events are driven by the test.
type fakeAuth struct {
	mu         sync.Mutex
	session    *domain.Session
	listeners  map[int]func(domain.AuthEvent)
	nextID     int
	signOutErr error
}

func newFakeAuth(sess *domain.Session) *fakeAuth {
	return &fakeAuth{session: sess, listeners: make(map[int]func(domain.AuthEvent))}
}

func (a *fakeAuth) Session() *domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

func (a *fakeAuth) SignOut(ctx context.Context) error {
	if a.signOutErr != nil {
		return a.signOutErr
	}
	a.emit(domain.AuthEvent{Type: domain.SignedOut})
	return nil
}

func (a *fakeAuth) OnAuthStateChange(fn func(domain.AuthEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

func (a *fakeAuth) emit(ev domain.AuthEvent) {
	a.mu.Lock()
	a.session = ev.Session
	fns := make([]func(domain.AuthEvent), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// fakePrefs keeps preferences in memory.
type fakePrefs struct {
	mu    sync.Mutex
	theme domain.Theme
	seen  bool
	err   error
}

func (p *fakePrefs) Theme() (domain.Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.theme == "" {
		return domain.ThemeSystem, nil
	}
	return p.theme, nil
}

func (p *fakePrefs) SetTheme(t domain.Theme) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.theme = t
	return nil
}

func (p *fakePrefs) HasSeenOnboarding() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen, nil
}

func (p *fakePrefs) SetHasSeenOnboarding(seen bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.seen = seen
	return nil
}

package state

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/mapper"
	"github.com/dukerupert/listwise/internal/model"
)

// copySuffix is appended to the name of a duplicated list.
const copySuffix = " (copy)"

// FetchInitialData loads the signed-in user's lists, budgets and purchases
// and replaces the local collections. Nothing is replaced unless all three
// loads succeed, or if the session changed while loading.
func (s *Store) FetchInitialData(ctx context.Context) error {
	_, gen, err := s.user()
	if err != nil {
		return fmt.Errorf("fetch initial data: %w", err)
	}

	defer s.begin(KeyFetchInitialData)()

	var (
		lists     []model.List
		budgets   []model.Budget
		purchases []model.Purchase
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lists, err = s.backend.FetchLists(gctx)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.backend.FetchBudgets(gctx)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = s.backend.FetchPurchases(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail("fetch initial data", "Could not load your data.", err)
	}

	history := mapper.Purchases(purchases)
	s.commit(gen, func(st *State) {
		st.Lists = mapper.Lists(lists)
		st.Budgets = mapper.Budgets(budgets)
		st.Purchases = history
		st.PriceHistory = mapper.PriceHistory(history, s.priceKey)
	})
	return nil
}

// AddList creates a list and opens it.
func (s *Store) AddList(ctx context.Context, in domain.NewList) (*domain.ShoppingList, error) {
	defer s.begin(KeyAddList)()

	uid, gen, err := s.user()
	if err != nil {
		return nil, s.fail("add list", "Could not create the list.", err)
	}
	row, err := s.backend.InsertList(ctx, mapper.NewList(uid, in))
	if err != nil {
		return nil, s.fail("add list", "Could not create the list.", err)
	}

	l := mapper.List(*row)
	s.commit(gen, func(st *State) {
		st.Lists = append(st.Lists, l.Clone())
		st.CurrentPage = domain.PageListDetail
		st.CurrentListID = l.ID
	})
	return &l, nil
}

// UpdateList sends only the fields set in u and merges them into the local
// list. Setting the status to completed also records the list's prices in
// the background.
func (s *Store) UpdateList(ctx context.Context, id string, u domain.ListUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	defer s.begin(KeyUpdateList(id))()
	gen := s.generation()

	if _, err := s.backend.UpdateList(ctx, id, mapper.ListPatch(u)); err != nil {
		return s.fail("update list", "Could not update the list.", err)
	}

	var (
		completed *domain.ShoppingList
		uid       string
	)
	s.commit(gen, func(st *State) {
		i := findList(st.Lists, id)
		if i < 0 {
			return
		}
		st.Lists[i] = u.Apply(st.Lists[i])
		if u.Status != nil && *u.Status == domain.StatusCompleted && st.Session != nil {
			l := st.Lists[i].Clone()
			completed = &l
			uid = st.Session.UserID
		}
	})

	if completed != nil {
		s.background(func(ctx context.Context) {
			_ = s.recordPriceHistory(ctx, *completed, uid, gen)
		})
	}
	return nil
}

// DeleteList removes a list. Its purchase history is kept.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	defer s.begin(KeyDeleteList(id))()
	gen := s.generation()

	if err := s.backend.DeleteList(ctx, id); err != nil {
		return s.fail("delete list", "Could not delete the list.", err)
	}

	s.commit(gen, func(st *State) {
		if i := findList(st.Lists, id); i >= 0 {
			st.Lists = append(st.Lists[:i:i], st.Lists[i+1:]...)
		}
		if st.CurrentListID == id {
			st.CurrentListID = ""
			if st.CurrentPage == domain.PageListDetail {
				st.CurrentPage = domain.PageMyLists
			}
		}
	})
	return nil
}

// DuplicateList copies a list and its items into a new list and opens it.
// Items are copied unpurchased with their order kept. If the items cannot be
// inserted or the new list cannot be read back, it is deleted again.
func (s *Store) DuplicateList(ctx context.Context, id string) (*domain.ShoppingList, error) {
	const op, msg = "duplicate list", "Could not duplicate the list."
	defer s.begin(KeyDuplicateList(id))()

	uid, gen, err := s.user()
	if err != nil {
		return nil, s.fail(op, msg, err)
	}
	var src *domain.ShoppingList
	s.read(func(st *State) { src = st.FindList(id) })
	if src == nil {
		return nil, s.fail(op, msg, ErrListNotFound)
	}

	row, err := s.backend.InsertList(ctx, mapper.NewList(uid, domain.NewList{
		Name:       src.Name + copySuffix,
		Category:   src.Category,
		ListBudget: src.ListBudget,
	}))
	if err != nil {
		return nil, s.fail(op, msg, err)
	}

	if len(src.Items) > 0 {
		if _, err := s.backend.InsertItems(ctx, mapper.CopyItems(row.ID, uid, src.Items)); err != nil {
			s.discardList(ctx, row.ID)
			return nil, s.fail(op, msg, err)
		}
	}

	full, err := s.backend.FetchList(ctx, row.ID)
	if err == nil && full == nil {
		err = ErrUnexpectedRow
	}
	if err != nil {
		s.discardList(ctx, row.ID)
		return nil, s.fail(op, msg, err)
	}

	l := mapper.List(*full)
	s.commit(gen, func(st *State) {
		st.Lists = append(st.Lists, l.Clone())
		st.CurrentPage = domain.PageListDetail
		st.CurrentListID = l.ID
	})
	return &l, nil
}

// discardList deletes a list created by an action that went on to fail. It
// runs even if ctx was cancelled.
func (s *Store) discardList(ctx context.Context, id string) {
	if err := s.backend.DeleteList(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Error("failed to remove partial duplicate", "list_id", id, "error", err)
	}
}

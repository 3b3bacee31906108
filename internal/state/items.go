package state

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/mapper"
	"github.com/dukerupert/listwise/internal/model"
)

func sortItems(items []domain.ListItem) {
	sort.SliceStable(items, func(a, b int) bool { return items[a].Order < items[b].Order })
}

// AddItemToList appends an item after the list's current last item.
func (s *Store) AddItemToList(ctx context.Context, listID string, in domain.NewItem) (*domain.ListItem, error) {
	const op, msg = "add item", "Could not add the item."
	defer s.begin(KeyAddItem(listID))()

	uid, gen, err := s.user()
	if err != nil {
		return nil, s.fail(op, msg, err)
	}
	order := -1
	s.read(func(st *State) {
		if i := findList(st.Lists, listID); i >= 0 {
			order = st.Lists[i].NextOrder()
		}
	})
	if order < 0 {
		return nil, s.fail(op, msg, ErrListNotFound)
	}

	rows, err := s.backend.InsertItems(ctx, []model.NewItem{mapper.NewItem(listID, uid, order, in)})
	if err != nil {
		return nil, s.fail(op, msg, err)
	}
	if len(rows) != 1 {
		return nil, s.fail(op, msg, ErrUnexpectedRow)
	}

	it := mapper.Item(rows[0])
	s.commit(gen, func(st *State) {
		i := findList(st.Lists, listID)
		if i < 0 {
			return
		}
		st.Lists[i].Items = append(st.Lists[i].Items, it)
		sortItems(st.Lists[i].Items)
	})
	return &it, nil
}

// UpdateItemInList sends only the fields set in u and merges them into the
// local item.
func (s *Store) UpdateItemInList(ctx context.Context, listID, itemID string, u domain.ItemUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	defer s.begin(KeyUpdateItem(itemID))()
	gen := s.generation()

	if _, err := s.backend.UpdateItem(ctx, itemID, mapper.ItemPatch(u)); err != nil {
		return s.fail("update item", "Could not update the item.", err)
	}

	s.commit(gen, func(st *State) {
		i := findList(st.Lists, listID)
		if i < 0 {
			return
		}
		j := st.Lists[i].FindItem(itemID)
		if j < 0 {
			return
		}
		st.Lists[i].Items[j] = u.Apply(st.Lists[i].Items[j])
		if u.Order != nil {
			sortItems(st.Lists[i].Items)
		}
	})
	return nil
}

func (s *Store) RemoveItemFromList(ctx context.Context, listID, itemID string) error {
	defer s.begin(KeyRemoveItem(itemID))()
	gen := s.generation()

	if err := s.backend.DeleteItem(ctx, itemID); err != nil {
		return s.fail("remove item", "Could not remove the item.", err)
	}

	s.commit(gen, func(st *State) {
		i := findList(st.Lists, listID)
		if i < 0 {
			return
		}
		if j := st.Lists[i].FindItem(itemID); j >= 0 {
			items := st.Lists[i].Items
			st.Lists[i].Items = append(items[:j:j], items[j+1:]...)
		}
	})
	return nil
}

// UpdateItemOrder applies the new orders locally at once, then sends one
// update per item whose order changed, concurrently. If any update fails
// the lists collection is restored to what it was before the call, unless
// the signed-in user changed in the meantime.
func (s *Store) UpdateItemOrder(ctx context.Context, listID string, orders []domain.ItemOrder) error {
	const op, msg = "update item order", "Could not reorder the items."
	defer s.begin(KeyUpdateItemOrder(listID))()

	var (
		snapshot []domain.ShoppingList
		changed  []domain.ItemOrder
		missing  error
		gen      int
	)
	s.update(func(st *State) {
		gen = s.gen
		i := findList(st.Lists, listID)
		if i < 0 {
			missing = ErrListNotFound
			return
		}
		l := st.Lists[i]
		for _, o := range orders {
			j := l.FindItem(o.ItemID)
			if j < 0 {
				missing = ErrItemNotFound
				return
			}
			if l.Items[j].Order != o.NewOrder {
				changed = append(changed, o)
			}
		}
		if len(changed) == 0 {
			return
		}

		snapshot = cloneLists(st.Lists)
		items := append([]domain.ListItem(nil), l.Items...)
		for _, o := range changed {
			items[l.FindItem(o.ItemID)].Order = o.NewOrder
		}
		sortItems(items)
		st.Lists[i].Items = items
	})
	if missing != nil {
		return s.fail(op, msg, missing)
	}
	if len(changed) == 0 {
		return nil
	}

	var g errgroup.Group
	for _, o := range changed {
		g.Go(func() error {
			order := o.NewOrder
			_, err := s.backend.UpdateItem(ctx, o.ItemID, model.ItemPatch{ItemOrder: &order})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.commit(gen, func(st *State) { st.Lists = snapshot })
		return s.fail(op, msg, err)
	}
	return nil
}

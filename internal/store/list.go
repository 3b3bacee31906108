package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/listwise/internal/model"
)

// ListStore reads and writes shopping lists. Every method is scoped to the
// owning user; rows of other users behave as if they did not exist.
type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

func scanList(sc scanner) (*model.List, error) {
	var l model.List
	var pinned int
	var budget sql.NullFloat64
	err := sc.Scan(&l.ID, &l.UserID, &l.Name, &l.Category, &l.Status, &pinned, &budget, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.IsPinned = pinned != 0
	if budget.Valid {
		l.ListBudget = &budget.Float64
	}
	return &l, nil
}

const listCols = `id, user_id, name, category, status, is_pinned, list_budget, created_at`

// ListByUser returns the user's lists, oldest first, each with its items.
func (s *ListStore) ListByUser(userID string) ([]model.List, error) {
	rows, err := s.db.Query(`SELECT `+listCols+` FROM lists WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.List
	index := make(map[string]int)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		index[l.ID] = len(lists)
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	items, err := s.itemsWhere(`user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := index[it.ListID]; ok {
			lists[i].Items = append(lists[i].Items, it)
		}
	}
	for i := range lists {
		if lists[i].Items == nil {
			lists[i].Items = []model.Item{}
		}
	}
	return lists, nil
}

// GetByID returns the list with its items, or nil if not found.
func (s *ListStore) GetByID(userID, id string) (*model.List, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE id = ? AND user_id = ?`, id, userID)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	items, err := s.itemsWhere(`list_id = ?`, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	l.Items = items
	return l, nil
}

func (s *ListStore) Create(nl model.NewList) (*model.List, error) {
	id := uuid.NewString()
	var budget sql.NullFloat64
	if nl.ListBudget != nil {
		budget = sql.NullFloat64{Float64: *nl.ListBudget, Valid: true}
	}
	_, err := s.db.Exec(
		`INSERT INTO lists (id, user_id, name, category, list_budget, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, nl.UserID, nl.Name, nl.Category, budget, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	return s.GetByID(nl.UserID, id)
}

// Update applies the patch and returns the updated list, or nil if the list
// does not exist. An empty patch changes nothing.
func (s *ListStore) Update(userID, id string, p model.ListPatch) (*model.List, error) {
	cols := p.Columns()
	if len(cols) > 0 {
		set, args := setClause(cols)
		args = append(args, id, userID)
		if _, err := s.db.Exec(`UPDATE lists SET `+set+` WHERE id = ? AND user_id = ?`, args...); err != nil {
			return nil, fmt.Errorf("update list: %w", err)
		}
	}
	return s.GetByID(userID, id)
}

// Delete removes the list; its items go with it. It reports whether a row
// was deleted.
func (s *ListStore) Delete(userID, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM lists WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete list: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ListStore) itemsWhere(cond string, args ...any) ([]model.Item, error) {
	rows, err := s.db.Query(`SELECT `+itemCols+` FROM items WHERE `+cond+` ORDER BY item_order ASC, created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

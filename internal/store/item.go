package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/listwise/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(sc scanner) (*model.Item, error) {
	var it model.Item
	var purchased int
	err := sc.Scan(
		&it.ID, &it.ListID, &it.UserID, &it.Name, &it.Quantity, &it.UnitPrice,
		&it.Category, &purchased, &it.ItemOrder, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.IsPurchased = purchased != 0
	return &it, nil
}

const itemCols = `id, list_id, user_id, name, quantity, unit_price, category, is_purchased, item_order, created_at`

func (s *ItemStore) GetByID(userID, id string) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ? AND user_id = ?`, id, userID)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// CreateBatch inserts all items in one transaction: either every item is
// stored or none is. Each target list must belong to userID.
func (s *ItemStore) CreateBatch(userID string, items []model.NewItem) ([]model.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	owned := make(map[string]bool)
	ids := make([]string, 0, len(items))
	now := time.Now().UTC()
	for _, ni := range items {
		if _, ok := owned[ni.ListID]; !ok {
			var one int
			err := tx.QueryRow(`SELECT 1 FROM lists WHERE id = ? AND user_id = ?`, ni.ListID, userID).Scan(&one)
			if err != nil && err != sql.ErrNoRows {
				return nil, fmt.Errorf("check list: %w", err)
			}
			owned[ni.ListID] = err == nil
		}
		if !owned[ni.ListID] {
			return nil, ErrListNotFound
		}

		id := uuid.NewString()
		_, err := tx.Exec(
			`INSERT INTO items (id, list_id, user_id, name, quantity, unit_price, category, is_purchased, item_order, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ni.ListID, userID, ni.Name, ni.Quantity, ni.UnitPrice, ni.Category, boolInt(ni.IsPurchased), ni.ItemOrder, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert item: %w", err)
		}
		ids = append(ids, id)
	}

	created := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		row := tx.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
		it, err := scanItem(row)
		if err != nil {
			return nil, fmt.Errorf("reload item: %w", err)
		}
		created = append(created, *it)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// Update applies the patch and returns the updated item, or nil if not found.
func (s *ItemStore) Update(userID, id string, p model.ItemPatch) (*model.Item, error) {
	cols := p.Columns()
	if len(cols) > 0 {
		set, args := setClause(cols)
		args = append(args, id, userID)
		if _, err := s.db.Exec(`UPDATE items SET `+set+` WHERE id = ? AND user_id = ?`, args...); err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
	}
	return s.GetByID(userID, id)
}

func (s *ItemStore) Delete(userID, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukerupert/listwise/internal/model"
)

// PurchaseStore holds the price/purchase history. Rows outlive the list they
// came from: deleting a list only clears their list_id.
type PurchaseStore struct {
	db *sql.DB
}

func NewPurchaseStore(db *sql.DB) *PurchaseStore {
	return &PurchaseStore{db: db}
}

func scanPurchase(sc scanner) (*model.Purchase, error) {
	var p model.Purchase
	var listID sql.NullString
	err := sc.Scan(&p.ID, &p.UserID, &listID, &p.ItemName, &p.Quantity, &p.UnitPrice, &p.PurchasedAt)
	if err != nil {
		return nil, err
	}
	if listID.Valid {
		p.ListID = &listID.String
	}
	return &p, nil
}

const purchaseCols = `id, user_id, list_id, item_name, quantity, unit_price, purchased_at`

// ListByUser returns observations oldest first.
func (s *PurchaseStore) ListByUser(userID string) ([]model.Purchase, error) {
	rows, err := s.db.Query(`SELECT `+purchaseCols+` FROM purchase_history WHERE user_id = ? ORDER BY purchased_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreateBatch stores all observations in one transaction. A list_id that
// does not belong to userID is stored as NULL.
func (s *PurchaseStore) CreateBatch(userID string, in []model.NewPurchase) ([]model.Purchase, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(in))
	for _, np := range in {
		var listID sql.NullString
		if np.ListID != nil {
			var one int
			err := tx.QueryRow(`SELECT 1 FROM lists WHERE id = ? AND user_id = ?`, *np.ListID, userID).Scan(&one)
			if err != nil && err != sql.ErrNoRows {
				return nil, fmt.Errorf("check list: %w", err)
			}
			listID = sql.NullString{String: *np.ListID, Valid: err == nil}
		}

		id := uuid.NewString()
		_, err := tx.Exec(
			`INSERT INTO purchase_history (id, user_id, list_id, item_name, quantity, unit_price, purchased_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, userID, listID, np.ItemName, np.Quantity, np.UnitPrice, np.PurchasedAt.UTC(),
		)
		if err != nil {
			return nil, fmt.Errorf("insert purchase: %w", err)
		}
		ids = append(ids, id)
	}

	out := make([]model.Purchase, 0, len(ids))
	for _, id := range ids {
		p, err := scanPurchase(tx.QueryRow(`SELECT `+purchaseCols+` FROM purchase_history WHERE id = ?`, id))
		if err != nil {
			return nil, fmt.Errorf("reload purchase: %w", err)
		}
		out = append(out, *p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

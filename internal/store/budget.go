package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/listwise/internal/model"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

func scanBudget(sc scanner) (*model.Budget, error) {
	var b model.Budget
	err := sc.Scan(&b.ID, &b.UserID, &b.Year, &b.Month, &b.Amount, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const budgetCols = `id, user_id, year, month, amount, created_at`

func (s *BudgetStore) ListByUser(userID string) ([]model.Budget, error) {
	rows, err := s.db.Query(`SELECT `+budgetCols+` FROM budgets WHERE user_id = ? ORDER BY year ASC, month ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// GetByPeriod returns the budget for (year, month), or nil.
func (s *BudgetStore) GetByPeriod(userID string, year, month int) (*model.Budget, error) {
	row := s.db.QueryRow(`SELECT `+budgetCols+` FROM budgets WHERE user_id = ? AND year = ? AND month = ?`, userID, year, month)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget by period: %w", err)
	}
	return b, nil
}

func (s *BudgetStore) GetByID(userID, id string) (*model.Budget, error) {
	row := s.db.QueryRow(`SELECT `+budgetCols+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// Create fails with a constraint error if the period already has a budget.
func (s *BudgetStore) Create(nb model.NewBudget) (*model.Budget, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO budgets (id, user_id, year, month, amount, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, nb.UserID, nb.Year, nb.Month, nb.Amount, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	return s.GetByID(nb.UserID, id)
}

func (s *BudgetStore) Update(userID, id string, p model.BudgetPatch) (*model.Budget, error) {
	cols := p.Columns()
	if len(cols) > 0 {
		set, args := setClause(cols)
		args = append(args, id, userID)
		if _, err := s.db.Exec(`UPDATE budgets SET `+set+` WHERE id = ? AND user_id = ?`, args...); err != nil {
			return nil, fmt.Errorf("update budget: %w", err)
		}
	}
	return s.GetByID(userID, id)
}

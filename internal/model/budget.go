package model

import "time"

// Budget months are 1-based (January = 1).
type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type NewBudget struct {
	UserID string  `json:"user_id"`
	Year   int     `json:"year" validate:"gte=1970"`
	Month  int     `json:"month" validate:"gte=1,lte=12"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

type BudgetPatch struct {
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
}

func (p BudgetPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Amount != nil {
		cols["amount"] = *p.Amount
	}
	return cols
}

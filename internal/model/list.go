package model

import "time"

type List struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Status     string    `json:"status,omitempty"`
	IsPinned   bool      `json:"is_pinned"`
	ListBudget *float64  `json:"list_budget"`
	CreatedAt  time.Time `json:"created_at"`
	Items      []Item    `json:"items,omitempty"`
}

type NewList struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name" validate:"required"`
	Category   string   `json:"category"`
	ListBudget *float64 `json:"list_budget" validate:"omitempty,gte=0"`
}

// ListPatch carries only the columns a partial update touches.
type ListPatch struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Category   *string  `json:"category,omitempty"`
	Status     *string  `json:"status,omitempty" validate:"omitempty,oneof=active completed archived"`
	IsPinned   *bool    `json:"is_pinned,omitempty"`
	ListBudget *float64 `json:"list_budget,omitempty" validate:"omitempty,gte=0"`
}

// Columns returns the touched column names mapped to their new values.
func (p ListPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.IsPinned != nil {
		cols["is_pinned"] = *p.IsPinned
	}
	if p.ListBudget != nil {
		cols["list_budget"] = *p.ListBudget
	}
	return cols
}

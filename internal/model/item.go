package model

import "time"

type Item struct {
	ID          string    `json:"id"`
	ListID      string    `json:"list_id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Category    string    `json:"category"`
	IsPurchased bool      `json:"is_purchased"`
	ItemOrder   int       `json:"item_order"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewItem struct {
	ListID      string  `json:"list_id" validate:"required"`
	UserID      string  `json:"user_id"`
	Name        string  `json:"name" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	Category    string  `json:"category"`
	IsPurchased bool    `json:"is_purchased"`
	ItemOrder   int     `json:"item_order" validate:"gte=0"`
}

type ItemPatch struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	UnitPrice   *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty"`
	IsPurchased *bool    `json:"is_purchased,omitempty"`
	ItemOrder   *int     `json:"item_order,omitempty" validate:"omitempty,gte=0"`
}

func (p ItemPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Quantity != nil {
		cols["quantity"] = *p.Quantity
	}
	if p.UnitPrice != nil {
		cols["unit_price"] = *p.UnitPrice
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.IsPurchased != nil {
		cols["is_purchased"] = *p.IsPurchased
	}
	if p.ItemOrder != nil {
		cols["item_order"] = *p.ItemOrder
	}
	return cols
}

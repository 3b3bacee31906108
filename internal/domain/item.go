package domain

import "time"

type ListItem struct {
	ID          string    `json:"id"`
	ListID      string    `json:"listId"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Category    string    `json:"category"`
	IsPurchased bool      `json:"isPurchased"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Total is quantity times unit price.
func (i ListItem) Total() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

type NewItem struct {
	Name      string
	Quantity  int
	UnitPrice float64
	Category  string
}

type ItemUpdate struct {
	Name        *string
	Quantity    *int
	UnitPrice   *float64
	Category    *string
	IsPurchased *bool
	Order       *int
}

func (u ItemUpdate) Apply(it ListItem) ListItem {
	if u.Name != nil {
		it.Name = *u.Name
	}
	if u.Quantity != nil {
		it.Quantity = *u.Quantity
	}
	if u.UnitPrice != nil {
		it.UnitPrice = *u.UnitPrice
	}
	if u.Category != nil {
		it.Category = *u.Category
	}
	if u.IsPurchased != nil {
		it.IsPurchased = *u.IsPurchased
	}
	if u.Order != nil {
		it.Order = *u.Order
	}
	return it
}

func (u ItemUpdate) IsEmpty() bool {
	return u.Name == nil && u.Quantity == nil && u.UnitPrice == nil &&
		u.Category == nil && u.IsPurchased == nil && u.Order == nil
}

// ItemOrder assigns a new display order to one item of a list.
type ItemOrder struct {
	ItemID   string `json:"itemId"`
	NewOrder int    `json:"newOrder"`
}

package model

import "time"

type Purchase struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ListID      *string   `json:"list_id"`
	ItemName    string    `json:"item_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type NewPurchase struct {
	UserID      string    `json:"user_id"`
	ListID      *string   `json:"list_id"`
	ItemName    string    `json:"item_name" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
	UnitPrice   float64   `json:"unit_price" validate:"gt=0"`
	PurchasedAt time.Time `json:"purchased_at" validate:"required"`
}

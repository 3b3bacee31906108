package domain

import "time"

// Purchase is one recorded observation of an item being bought at a price.
// It is not tied to a list item; ListID is nil once the list is deleted.
type Purchase struct {
	ID          string    `json:"id"`
	ListID      *string   `json:"listId,omitempty"`
	ItemName    string    `json:"itemName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceHistoryEntry groups observations under a loosely matched item name.
type PriceHistoryEntry struct {
	ItemName string       `json:"itemName"`
	Prices   []PricePoint `json:"prices"`
}

func (e PriceHistoryEntry) Clone() PriceHistoryEntry {
	e.Prices = append([]PricePoint(nil), e.Prices...)
	return e
}

// Latest returns the most recent observation, if any.
func (e PriceHistoryEntry) Latest() (PricePoint, bool) {
	if len(e.Prices) == 0 {
		return PricePoint{}, false
	}
	return e.Prices[len(e.Prices)-1], true
}

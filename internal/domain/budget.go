package domain

import "time"

// Budget is a monthly spending budget. Month is 1-based.
type Budget struct {
	ID     string  `json:"id"`
	UserID string  `json:"userId"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
}

// Period returns the (year, month) a date falls in, in the date's location.
func Period(t time.Time) (int, int) {
	return t.Year(), int(t.Month())
}

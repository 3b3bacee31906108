// Package domain holds the entity shapes the screens render from. Field
// names follow the UI convention (camelCase JSON); the remote row shapes live
// in package model and package mapper translates between the two.
package domain

import "time"

type ListStatus string

const (
	StatusActive    ListStatus = "active"
	StatusCompleted ListStatus = "completed"
	StatusArchived  ListStatus = "archived"
)

type ShoppingList struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	CreatedAt  time.Time  `json:"createdAt"`
	Status     ListStatus `json:"status,omitempty"`
	IsPinned   bool       `json:"isPinned"`
	ListBudget *float64   `json:"listBudget,omitempty"`
	Items      []ListItem `json:"items"`
}

// Clone returns a deep copy; item slices and the budget pointer are not shared.
func (l ShoppingList) Clone() ShoppingList {
	c := l
	c.Items = append([]ListItem(nil), l.Items...)
	if c.Items == nil {
		c.Items = []ListItem{}
	}
	if l.ListBudget != nil {
		b := *l.ListBudget
		c.ListBudget = &b
	}
	return c
}

// FindItem returns the index of the item with the given id, or -1.
func (l ShoppingList) FindItem(itemID string) int {
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// NextOrder is one past the highest item order, or 0 for an empty list.
func (l ShoppingList) NextOrder() int {
	next := 0
	for _, it := range l.Items {
		if it.Order >= next {
			next = it.Order + 1
		}
	}
	return next
}

// NewList is the input to creating a list. Validation happens in package form.
type NewList struct {
	Name       string
	Category   string
	ListBudget *float64
}

// ListUpdate is a partial update: nil fields are left untouched.
type ListUpdate struct {
	Name       *string
	Category   *string
	Status     *ListStatus
	IsPinned   *bool
	ListBudget *float64
}

func (u ListUpdate) Apply(l ShoppingList) ShoppingList {
	if u.Name != nil {
		l.Name = *u.Name
	}
	if u.Category != nil {
		l.Category = *u.Category
	}
	if u.Status != nil {
		l.Status = *u.Status
	}
	if u.IsPinned != nil {
		l.IsPinned = *u.IsPinned
	}
	if u.ListBudget != nil {
		b := *u.ListBudget
		l.ListBudget = &b
	}
	return l
}

func (u ListUpdate) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Status == nil && u.IsPinned == nil && u.ListBudget == nil
}

// Ptr returns a pointer to v, for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}

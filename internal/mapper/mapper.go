// Package mapper translates between the service's row shapes (package model)
// and the entities the screens work with (package domain). Every function
// here is pure, total and order-preserving.
package mapper

import (
	"strings"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/model"
)

func List(r model.List) domain.ShoppingList {
	l := domain.ShoppingList{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
		Status:    domain.ListStatus(r.Status),
		IsPinned:  r.IsPinned,
		Items:     Items(r.Items),
	}
	if r.ListBudget != nil {
		b := *r.ListBudget
		l.ListBudget = &b
	}
	return l
}

func Lists(rows []model.List) []domain.ShoppingList {
	lists := make([]domain.ShoppingList, 0, len(rows))
	for _, r := range rows {
		lists = append(lists, List(r))
	}
	return lists
}

func Item(r model.Item) domain.ListItem {
	return domain.ListItem{
		ID:          r.ID,
		ListID:      r.ListID,
		UserID:      r.UserID,
		Name:        r.Name,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		Category:    r.Category,
		IsPurchased: r.IsPurchased,
		Order:       r.ItemOrder,
		CreatedAt:   r.CreatedAt,
	}
}

// Items never returns nil: an absent relation maps to an empty list.
func Items(rows []model.Item) []domain.ListItem {
	items := make([]domain.ListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, Item(r))
	}
	return items
}

func Budget(r model.Budget) domain.Budget {
	return domain.Budget{
		ID:     r.ID,
		UserID: r.UserID,
		Year:   r.Year,
		Month:  r.Month,
		Amount: r.Amount,
	}
}

func Budgets(rows []model.Budget) []domain.Budget {
	budgets := make([]domain.Budget, 0, len(rows))
	for _, r := range rows {
		budgets = append(budgets, Budget(r))
	}
	return budgets
}

func Purchase(r model.Purchase) domain.Purchase {
	p := domain.Purchase{
		ID:          r.ID,
		ItemName:    r.ItemName,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		PurchasedAt: r.PurchasedAt,
	}
	if r.ListID != nil {
		id := *r.ListID
		p.ListID = &id
	}
	return p
}

func Purchases(rows []model.Purchase) []domain.Purchase {
	out := make([]domain.Purchase, 0, len(rows))
	for _, r := range rows {
		out = append(out, Purchase(r))
	}
	return out
}

// ListPatch carries over exactly the fields set in u.
func ListPatch(u domain.ListUpdate) model.ListPatch {
	var p model.ListPatch
	if u.Name != nil {
		p.Name = copyPtr(u.Name)
	}
	if u.Category != nil {
		p.Category = copyPtr(u.Category)
	}
	if u.Status != nil {
		s := string(*u.Status)
		p.Status = &s
	}
	if u.IsPinned != nil {
		p.IsPinned = copyPtr(u.IsPinned)
	}
	if u.ListBudget != nil {
		p.ListBudget = copyPtr(u.ListBudget)
	}
	return p
}

func ItemPatch(u domain.ItemUpdate) model.ItemPatch {
	var p model.ItemPatch
	if u.Name != nil {
		p.Name = copyPtr(u.Name)
	}
	if u.Quantity != nil {
		p.Quantity = copyPtr(u.Quantity)
	}
	if u.UnitPrice != nil {
		p.UnitPrice = copyPtr(u.UnitPrice)
	}
	if u.Category != nil {
		p.Category = copyPtr(u.Category)
	}
	if u.IsPurchased != nil {
		p.IsPurchased = copyPtr(u.IsPurchased)
	}
	if u.Order != nil {
		p.ItemOrder = copyPtr(u.Order)
	}
	return p
}

// FullListUpdate sets every settable field of l.
func FullListUpdate(l domain.ShoppingList) domain.ListUpdate {
	u := domain.ListUpdate{
		Name:     copyPtr(&l.Name),
		Category: copyPtr(&l.Category),
		IsPinned: copyPtr(&l.IsPinned),
	}
	if l.Status != "" {
		u.Status = copyPtr(&l.Status)
	}
	if l.ListBudget != nil {
		u.ListBudget = copyPtr(l.ListBudget)
	}
	return u
}

func FullItemUpdate(it domain.ListItem) domain.ItemUpdate {
	return domain.ItemUpdate{
		Name:        copyPtr(&it.Name),
		Quantity:    copyPtr(&it.Quantity),
		UnitPrice:   copyPtr(&it.UnitPrice),
		Category:    copyPtr(&it.Category),
		IsPurchased: copyPtr(&it.IsPurchased),
		Order:       copyPtr(&it.Order),
	}
}

func NewList(userID string, in domain.NewList) model.NewList {
	nl := model.NewList{
		UserID:   userID,
		Name:     in.Name,
		Category: in.Category,
	}
	if in.ListBudget != nil {
		nl.ListBudget = copyPtr(in.ListBudget)
	}
	return nl
}

func NewItem(listID, userID string, order int, in domain.NewItem) model.NewItem {
	return model.NewItem{
		ListID:    listID,
		UserID:    userID,
		Name:      in.Name,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Category:  in.Category,
		ItemOrder: order,
	}
}

// CopyItems builds insert payloads that copy items into another list. The
// purchased flag is reset and the order is kept.
func CopyItems(listID, userID string, items []domain.ListItem) []model.NewItem {
	out := make([]model.NewItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.NewItem{
			ListID:      listID,
			UserID:      userID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Category:    it.Category,
			IsPurchased: false,
			ItemOrder:   it.Order,
		})
	}
	return out
}

// PriceKey maps an item name to the key its price history is grouped under.
type PriceKey func(name string) string

// DefaultPriceKey groups case-insensitively. Names differing in surrounding
// whitespace stay separate entries.
func DefaultPriceKey(name string) string {
	return strings.ToLower(name)
}

// PriceHistory groups purchases into one entry per key, in order of first
// appearance. Each entry keeps the name casing of its first observation.
func PriceHistory(purchases []domain.Purchase, key PriceKey) []domain.PriceHistoryEntry {
	if key == nil {
		key = DefaultPriceKey
	}
	var entries []domain.PriceHistoryEntry
	index := make(map[string]int)
	for _, p := range purchases {
		entries = AppendPrice(entries, index, key, p.ItemName, domain.PricePoint{Date: p.PurchasedAt, Price: p.UnitPrice})
	}
	if entries == nil {
		entries = []domain.PriceHistoryEntry{}
	}
	return entries
}

// AppendPrice adds one observation to entries, creating the entry when no
// existing one shares the key. index caches key → position and is rebuilt
// when nil.
func AppendPrice(entries []domain.PriceHistoryEntry, index map[string]int, key PriceKey, name string, pt domain.PricePoint) []domain.PriceHistoryEntry {
	if key == nil {
		key = DefaultPriceKey
	}
	k := key(name)
	if index != nil {
		if i, ok := index[k]; ok {
			entries[i].Prices = append(entries[i].Prices, pt)
			return entries
		}
	} else {
		for i := range entries {
			if key(entries[i].ItemName) == k {
				entries[i].Prices = append(entries[i].Prices, pt)
				return entries
			}
		}
	}
	entries = append(entries, domain.PriceHistoryEntry{ItemName: name, Prices: []domain.PricePoint{pt}})
	if index != nil {
		index[k] = len(entries) - 1
	}
	return entries
}

func copyPtr[T any](p *T) *T {
	v := *p
	return &v
}

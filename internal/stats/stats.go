// Package stats derives display figures from the store snapshot. Every
// function is a pure reduction; empty input gives zero values or "N/A".
package stats

import (
	"sort"
	"time"

	"github.com/dukerupert/listwise/internal/domain"
)

// NotAvailable is shown when there is nothing to rank.
const NotAvailable = "N/A"

// ListTotal sums quantity × unit price over the list's items.
func ListTotal(l domain.ShoppingList) float64 {
	var total float64
	for _, it := range l.Items {
		total += it.Total()
	}
	return total
}

// BudgetUsage is the list total as a percentage of the list budget, or 0
// when the list has no positive budget.
func BudgetUsage(l domain.ShoppingList) float64 {
	if l.ListBudget == nil || *l.ListBudget <= 0 {
		return 0
	}
	return ListTotal(l) / *l.ListBudget * 100
}

// Remaining is the budget left on the list. ok is false without a budget.
func Remaining(l domain.ShoppingList) (left float64, ok bool) {
	if l.ListBudget == nil {
		return 0, false
	}
	return *l.ListBudget - ListTotal(l), true
}

// Completed returns the lists whose status is completed, in input order.
func Completed(lists []domain.ShoppingList) []domain.ShoppingList {
	var out []domain.ShoppingList
	for _, l := range lists {
		if l.Status == domain.StatusCompleted {
			out = append(out, l)
		}
	}
	return out
}

// TotalSpent sums ListTotal over lists.
func TotalSpent(lists []domain.ShoppingList) float64 {
	var total float64
	for _, l := range lists {
		total += ListTotal(l)
	}
	return total
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategorySpending totals item spend per category, largest first. Ties keep
// the order in which categories first appear.
func CategorySpending(lists []domain.ShoppingList) []CategoryTotal {
	var out []CategoryTotal
	index := make(map[string]int)
	for _, l := range lists {
		for _, it := range l.Items {
			i, ok := index[it.Category]
			if !ok {
				i = len(out)
				index[it.Category] = i
				out = append(out, CategoryTotal{Category: it.Category})
			}
			out[i].Total += it.Total()
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Total > out[b].Total })
	return out
}

type ProductDetail struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	TotalSpent   float64 `json:"totalSpent"`
	AveragePrice float64 `json:"averagePrice"`
}

// productTotals aggregates items by exact name in first-appearance order.
// AveragePrice is the mean of the unit prices seen, unweighted.
func productTotals(lists []domain.ShoppingList) []ProductDetail {
	var out []ProductDetail
	var priceSums []float64
	var counts []int
	index := make(map[string]int)
	for _, l := range lists {
		for _, it := range l.Items {
			i, ok := index[it.Name]
			if !ok {
				i = len(out)
				index[it.Name] = i
				out = append(out, ProductDetail{Name: it.Name})
				priceSums = append(priceSums, 0)
				counts = append(counts, 0)
			}
			out[i].Quantity += it.Quantity
			out[i].TotalSpent += it.Total()
			priceSums[i] += it.UnitPrice
			counts[i]++
		}
	}
	for i := range out {
		out[i].AveragePrice = priceSums[i] / float64(counts[i])
	}
	return out
}

// ProductDetails lists every product with its quantity, spend and average
// unit price, highest spend first.
func ProductDetails(lists []domain.ShoppingList) []ProductDetail {
	out := productTotals(lists)
	sort.SliceStable(out, func(a, b int) bool { return out[a].TotalSpent > out[b].TotalSpent })
	return out
}

// MostPurchasedItem is the product with the highest total quantity.
func MostPurchasedItem(lists []domain.ShoppingList) string {
	products := productTotals(lists)
	if len(products) == 0 {
		return NotAvailable
	}
	best := 0
	for i := range products {
		if products[i].Quantity > products[best].Quantity {
			best = i
		}
	}
	return products[best].Name
}

// TopSpendingCategory is the category with the highest spend.
func TopSpendingCategory(lists []domain.ShoppingList) string {
	cats := CategorySpending(lists)
	if len(cats) == 0 {
		return NotAvailable
	}
	return cats[0].Category
}

type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// MonthlySpending totals lists by the YYYY-MM of their creation time in loc
// (time.Local when nil), in ascending month order.
func MonthlySpending(lists []domain.ShoppingList, loc *time.Location) []MonthTotal {
	if loc == nil {
		loc = time.Local
	}
	totals := make(map[string]float64)
	for _, l := range lists {
		totals[l.CreatedAt.In(loc).Format("2006-01")] += ListTotal(l)
	}
	out := make([]MonthTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Month < out[b].Month })
	return out
}

// MonthSpent totals the completed lists created in (year, month) in loc.
func MonthSpent(lists []domain.ShoppingList, year, month int, loc *time.Location) float64 {
	if loc == nil {
		loc = time.Local
	}
	var total float64
	for _, l := range Completed(lists) {
		y, m := domain.Period(l.CreatedAt.In(loc))
		if y == year && m == month {
			total += ListTotal(l)
		}
	}
	return total
}

// BudgetFor returns the budget for (year, month), or nil.
func BudgetFor(budgets []domain.Budget, year, month int) *domain.Budget {
	for i := range budgets {
		if budgets[i].Year == year && budgets[i].Month == month {
			b := budgets[i]
			return &b
		}
	}
	return nil
}

type Dashboard struct {
	TotalSpent          float64 `json:"totalSpent"`
	CompletedLists      int     `json:"completedLists"`
	MostPurchasedItem   string  `json:"mostPurchasedItem"`
	TopSpendingCategory string  `json:"topSpendingCategory"`
}

// Summarize computes the dashboard figures over the completed lists.
func Summarize(lists []domain.ShoppingList) Dashboard {
	done := Completed(lists)
	return Dashboard{
		TotalSpent:          TotalSpent(done),
		CompletedLists:      len(done),
		MostPurchasedItem:   MostPurchasedItem(done),
		TopSpendingCategory: TopSpendingCategory(done),
	}
}

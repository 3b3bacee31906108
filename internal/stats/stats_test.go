package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/listwise/internal/domain"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func item(name, category string, qty int, price float64) domain.ListItem {
	return domain.ListItem{Name: name, Category: category, Quantity: qty, UnitPrice: price}
}

func sampleLists() []domain.ShoppingList {
	return []domain.ShoppingList{
		{
			ID: "a", Name: "Weekly", Status: domain.StatusCompleted, CreatedAt: at(2025, 1, 10),
			Items: []domain.ListItem{
				item("Milk", "Dairy", 2, 3.50),
				item("Apples", "Produce", 6, 0.50),
			},
		},
		{
			ID: "b", Name: "Party", Status: domain.StatusCompleted, CreatedAt: at(2025, 2, 3),
			Items: []domain.ListItem{
				item("Milk", "Dairy", 1, 4.50),
				item("Steak", "Meat", 1, 20),
			},
		},
		{
			ID: "c", Name: "Draft", Status: domain.StatusActive, CreatedAt: at(2025, 2, 20),
			Items: []domain.ListItem{item("Caviar", "Other", 1, 500)},
		},
	}
}

func TestListTotalAndUsage(t *testing.T) {
	l := domain.ShoppingList{
		ListBudget: domain.Ptr(150.0),
		Items:      []domain.ListItem{item("Milk", "Dairy", 2, 3.50)},
	}
	assert.InDelta(t, 7.00, ListTotal(l), 1e-9)
	assert.InDelta(t, 4.6667, BudgetUsage(l), 1e-3)

	left, ok := Remaining(l)
	assert.True(t, ok)
	assert.InDelta(t, 143.0, left, 1e-9)

	l.ListBudget = nil
	assert.Zero(t, BudgetUsage(l))
	_, ok = Remaining(l)
	assert.False(t, ok)

	l.ListBudget = domain.Ptr(0.0)
	assert.Zero(t, BudgetUsage(l))

	assert.Zero(t, ListTotal(domain.ShoppingList{}))
}

func TestSummarizeUsesCompletedLists(t *testing.T) {
	d := Summarize(sampleLists())
	assert.Equal(t, 2, d.CompletedLists)
	assert.InDelta(t, 7+3+4.5+20, d.TotalSpent, 1e-9)
	assert.Equal(t, "Apples", d.MostPurchasedItem)
	assert.Equal(t, "Meat", d.TopSpendingCategory)
}

func TestSummarizeEmpty(t *testing.T) {
	d := Summarize(nil)
	assert.Zero(t, d.CompletedLists)
	assert.Zero(t, d.TotalSpent)
	assert.Equal(t, NotAvailable, d.MostPurchasedItem)
	assert.Equal(t, NotAvailable, d.TopSpendingCategory)
}

func TestCategorySpendingOrder(t *testing.T) {
	got := CategorySpending(Completed(sampleLists()))
	require.Len(t, got, 3)
	assert.Equal(t, "Meat", got[0].Category)
	assert.Equal(t, "Dairy", got[1].Category)
	assert.InDelta(t, 11.5, got[1].Total, 1e-9)
	assert.Equal(t, "Produce", got[2].Category)
}

func TestProductDetails(t *testing.T) {
	got := ProductDetails(Completed(sampleLists()))
	require.Len(t, got, 3)
	assert.Equal(t, "Steak", got[0].Name)

	milk := got[1]
	assert.Equal(t, "Milk", milk.Name)
	assert.Equal(t, 3, milk.Quantity)
	assert.InDelta(t, 11.5, milk.TotalSpent, 1e-9)
	assert.InDelta(t, 4.0, milk.AveragePrice, 1e-9)
}

func TestMostPurchasedTieKeepsFirst(t *testing.T) {
	lists := []domain.ShoppingList{{Items: []domain.ListItem{
		item("Bread", "Bakery", 2, 1),
		item("Eggs", "Dairy", 2, 1),
	}}}
	assert.Equal(t, "Bread", MostPurchasedItem(lists))
}

func TestMonthlySpending(t *testing.T) {
	got := MonthlySpending(Completed(sampleLists()), time.UTC)
	assert.Equal(t, []MonthTotal{
		{Month: "2025-01", Total: 10},
		{Month: "2025-02", Total: 24.5},
	}, got)
}

func TestMonthSpentAndBudgetFor(t *testing.T) {
	assert.InDelta(t, 24.5, MonthSpent(sampleLists(), 2025, 2, time.UTC), 1e-9)
	assert.Zero(t, MonthSpent(sampleLists(), 2025, 3, time.UTC))

	budgets := []domain.Budget{
		{ID: "b1", Year: 2025, Month: 1, Amount: 100},
		{ID: "b2", Year: 2025, Month: 2, Amount: 150},
	}
	b := BudgetFor(budgets, 2025, 2)
	require.NotNil(t, b)
	assert.Equal(t, "b2", b.ID)
	assert.Nil(t, BudgetFor(budgets, 2024, 2))
}

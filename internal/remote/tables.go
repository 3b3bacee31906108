package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dukerupert/listwise/internal/model"
)

func (c *Client) FetchLists(ctx context.Context) ([]model.List, error) {
	var lists []model.List
	if err := c.do(ctx, http.MethodGet, "/rest/lists", true, nil, &lists); err != nil {
		return nil, fmt.Errorf("fetch lists: %w", err)
	}
	return lists, nil
}

func (c *Client) FetchList(ctx context.Context, id string) (*model.List, error) {
	var list model.List
	if err := c.do(ctx, http.MethodGet, "/rest/lists/"+url.PathEscape(id), true, nil, &list); err != nil {
		return nil, fmt.Errorf("fetch list: %w", err)
	}
	return &list, nil
}

func (c *Client) InsertList(ctx context.Context, nl model.NewList) (*model.List, error) {
	var list model.List
	if err := c.do(ctx, http.MethodPost, "/rest/lists", true, nl, &list); err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	return &list, nil
}

func (c *Client) UpdateList(ctx context.Context, id string, p model.ListPatch) (*model.List, error) {
	var list model.List
	if err := c.do(ctx, http.MethodPatch, "/rest/lists/"+url.PathEscape(id), true, p, &list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return &list, nil
}

func (c *Client) DeleteList(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/rest/lists/"+url.PathEscape(id), true, nil, nil); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// InsertItems stores all items or none.
func (c *Client) InsertItems(ctx context.Context, items []model.NewItem) ([]model.Item, error) {
	var out []model.Item
	if err := c.do(ctx, http.MethodPost, "/rest/items", true, items, &out); err != nil {
		return nil, fmt.Errorf("insert items: %w", err)
	}
	return out, nil
}

func (c *Client) UpdateItem(ctx context.Context, id string, p model.ItemPatch) (*model.Item, error) {
	var item model.Item
	if err := c.do(ctx, http.MethodPatch, "/rest/items/"+url.PathEscape(id), true, p, &item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/rest/items/"+url.PathEscape(id), true, nil, nil); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (c *Client) FetchBudgets(ctx context.Context) ([]model.Budget, error) {
	var budgets []model.Budget
	if err := c.do(ctx, http.MethodGet, "/rest/budgets", true, nil, &budgets); err != nil {
		return nil, fmt.Errorf("fetch budgets: %w", err)
	}
	return budgets, nil
}

// FindBudget returns the budget for (year, month), or nil if none exists.
func (c *Client) FindBudget(ctx context.Context, year, month int) (*model.Budget, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))

	var budgets []model.Budget
	if err := c.do(ctx, http.MethodGet, "/rest/budgets?"+q.Encode(), true, nil, &budgets); err != nil {
		return nil, fmt.Errorf("find budget: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	return &budgets[0], nil
}

func (c *Client) InsertBudget(ctx context.Context, nb model.NewBudget) (*model.Budget, error) {
	var b model.Budget
	if err := c.do(ctx, http.MethodPost, "/rest/budgets", true, nb, &b); err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	return &b, nil
}

func (c *Client) UpdateBudget(ctx context.Context, id string, p model.BudgetPatch) (*model.Budget, error) {
	var b model.Budget
	if err := c.do(ctx, http.MethodPatch, "/rest/budgets/"+url.PathEscape(id), true, p, &b); err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return &b, nil
}

func (c *Client) FetchPurchases(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := c.do(ctx, http.MethodGet, "/rest/purchases", true, nil, &purchases); err != nil {
		return nil, fmt.Errorf("fetch purchases: %w", err)
	}
	return purchases, nil
}

func (c *Client) InsertPurchases(ctx context.Context, in []model.NewPurchase) ([]model.Purchase, error) {
	var out []model.Purchase
	if err := c.do(ctx, http.MethodPost, "/rest/purchases", true, in, &out); err != nil {
		return nil, fmt.Errorf("insert purchases: %w", err)
	}
	return out, nil
}

// Package form validates what the user typed before any action reaches the
// state store. Failures are returned as *validation.Error and never touch
// state or the network.
package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/validation"
)

var validate = validation.New()

type listInput struct {
	Name       string   `json:"name" validate:"required"`
	Category   string   `json:"category"`
	ListBudget *float64 `json:"listBudget" validate:"omitempty,gte=0"`
}

// ParseList validates the create-list form. A blank budget means no budget.
func ParseList(name, category, budgetText string) (domain.NewList, error) {
	in := listInput{Name: strings.TrimSpace(name), Category: strings.TrimSpace(category)}
	if strings.TrimSpace(budgetText) != "" {
		b, err := parseDecimal(budgetText)
		if err != nil {
			return domain.NewList{}, validation.FieldError("listBudget", "must be a number")
		}
		in.ListBudget = &b
	}
	if err := validate.Struct(in); err != nil {
		return domain.NewList{}, err
	}
	return domain.NewList{Name: in.Name, Category: in.Category, ListBudget: in.ListBudget}, nil
}

type itemInput struct {
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
	Category  string  `json:"category"`
}

// ParseItem validates the add/edit item form. A blank price means unknown
// and is stored as 0.
func ParseItem(name, quantityText, priceText, category string) (domain.NewItem, error) {
	in := itemInput{Name: strings.TrimSpace(name), Category: strings.TrimSpace(category)}
	if strings.TrimSpace(quantityText) == "" {
		return domain.NewItem{}, validation.FieldError("quantity", "is required")
	}
	q, err := strconv.Atoi(strings.TrimSpace(quantityText))
	if err != nil {
		return domain.NewItem{}, validation.FieldError("quantity", "must be a whole number")
	}
	in.Quantity = q
	if strings.TrimSpace(priceText) != "" {
		p, err := parseDecimal(priceText)
		if err != nil {
			return domain.NewItem{}, validation.FieldError("unitPrice", "must be a number")
		}
		in.UnitPrice = p
	}
	if err := validate.Struct(in); err != nil {
		return domain.NewItem{}, err
	}
	return domain.NewItem{Name: in.Name, Quantity: in.Quantity, UnitPrice: in.UnitPrice, Category: in.Category}, nil
}

// ItemUpdate turns an edit form into a partial update of the edited fields.
func ItemUpdate(name, quantityText, priceText, category string) (domain.ItemUpdate, error) {
	in, err := ParseItem(name, quantityText, priceText, category)
	if err != nil {
		return domain.ItemUpdate{}, err
	}
	u := domain.ItemUpdate{
		Name:      domain.Ptr(in.Name),
		Quantity:  domain.Ptr(in.Quantity),
		UnitPrice: domain.Ptr(in.UnitPrice),
	}
	if in.Category != "" {
		u.Category = domain.Ptr(in.Category)
	}
	return u, nil
}

type amountInput struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

type monthlyInput struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// ParseListBudget accepts zero.
func ParseListBudget(text string) (float64, error) {
	a, err := parseAmount(text)
	if err != nil {
		return 0, err
	}
	if err := validate.Struct(amountInput{Amount: a}); err != nil {
		return 0, err
	}
	return a, nil
}

// ParseMonthlyBudget requires a positive amount.
func ParseMonthlyBudget(text string) (float64, error) {
	a, err := parseAmount(text)
	if err != nil {
		return 0, err
	}
	if err := validate.Struct(monthlyInput{Amount: a}); err != nil {
		return 0, err
	}
	return a, nil
}

func parseAmount(text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, validation.FieldError("amount", "is required")
	}
	a, err := parseDecimal(text)
	if err != nil {
		return 0, validation.FieldError("amount", "must be a number")
	}
	return a, nil
}

// parseDecimal accepts a decimal comma ("3,50").
func parseDecimal(text string) (float64, error) {
	s := strings.Replace(strings.TrimSpace(text), ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

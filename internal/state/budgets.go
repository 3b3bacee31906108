package state

import (
	"context"
	"time"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/mapper"
	"github.com/dukerupert/listwise/internal/model"
)

// SetMonthlyBudget sets the budget for the month date falls in, updating the
// existing record for that month if there is one.
func (s *Store) SetMonthlyBudget(ctx context.Context, amount float64, date time.Time) (*domain.Budget, error) {
	const op, msg = "set monthly budget", "Could not save the budget."
	defer s.begin(KeySetMonthlyBudget)()

	uid, gen, err := s.user()
	if err != nil {
		return nil, s.fail(op, msg, err)
	}
	year, month := domain.Period(date)

	existing, err := s.backend.FindBudget(ctx, year, month)
	if err != nil {
		return nil, s.fail(op, msg, err)
	}
	var row *model.Budget
	if existing != nil {
		row, err = s.backend.UpdateBudget(ctx, existing.ID, model.BudgetPatch{Amount: &amount})
	} else {
		row, err = s.backend.InsertBudget(ctx, model.NewBudget{UserID: uid, Year: year, Month: month, Amount: amount})
	}
	if err != nil {
		return nil, s.fail(op, msg, err)
	}
	if row == nil {
		return nil, s.fail(op, msg, ErrUnexpectedRow)
	}

	b := mapper.Budget(*row)
	s.commit(gen, func(st *State) {
		for i := range st.Budgets {
			if st.Budgets[i].Year == b.Year && st.Budgets[i].Month == b.Month {
				st.Budgets[i] = b
				return
			}
		}
		st.Budgets = append(st.Budgets, b)
	})
	return &b, nil
}

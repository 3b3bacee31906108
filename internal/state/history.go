package state

import (
	"context"
	"fmt"

	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/mapper"
	"github.com/dukerupert/listwise/internal/model"
)

// RecordPriceHistory stores one purchase per item of l with a positive unit
// price, dated now. Failures are logged and returned but never reach the
// error slot.
func (s *Store) RecordPriceHistory(ctx context.Context, l domain.ShoppingList) error {
	uid, gen, _ := s.user()
	return s.recordPriceHistory(ctx, l, uid, gen)
}

// recordPriceHistory records l for uid, who was signed in at generation gen.
func (s *Store) recordPriceHistory(ctx context.Context, l domain.ShoppingList, uid string, gen int) error {
	if uid == "" {
		s.logger.Warn("skipping price history", "list_id", l.ID, "error", ErrNotSignedIn)
		return fmt.Errorf("record price history: %w", ErrNotSignedIn)
	}

	now := s.now()
	listID := l.ID
	var in []model.NewPurchase
	for _, it := range l.Items {
		if it.UnitPrice <= 0 {
			continue
		}
		in = append(in, model.NewPurchase{
			UserID:      uid,
			ListID:      &listID,
			ItemName:    it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			PurchasedAt: now,
		})
	}
	if len(in) == 0 {
		return nil
	}

	defer s.begin(KeyRecordPriceHistory(l.ID))()

	rows, err := s.backend.InsertPurchases(ctx, in)
	if err != nil {
		s.logger.Error("failed to record price history", "list_id", l.ID, "error", err)
		return fmt.Errorf("record price history: %w", err)
	}

	recorded := mapper.Purchases(rows)
	s.commit(gen, func(st *State) {
		st.Purchases = append(st.Purchases, recorded...)
		for _, p := range recorded {
			st.PriceHistory = mapper.AppendPrice(st.PriceHistory, nil, s.priceKey, p.ItemName,
				domain.PricePoint{Date: p.PurchasedAt, Price: p.UnitPrice})
		}
	})
	s.logger.Info("recorded price history", "list_id", l.ID, "count", len(recorded))
	return nil
}

package state

import (
	"context"
	"fmt"

	"github.com/dukerupert/listwise/internal/domain"
)

// HandleAuthEvent mirrors the event's session into the store. A present
// session triggers FetchInitialData; an absent one clears all user data.
func (s *Store) HandleAuthEvent(ctx context.Context, ev domain.AuthEvent) error {
	if !s.applyAuthEvent(ev) {
		return nil
	}
	return s.FetchInitialData(ctx)
}

// applyAuthEvent reports whether the event left a session in place. The
// generation moves whenever the signed-in user changes, so results of
// actions still in flight for the previous user are dropped.
func (s *Store) applyAuthEvent(ev domain.AuthEvent) bool {
	s.logger.Debug("auth event", "type", ev.Type)
	s.update(func(st *State) {
		if ev.Session == nil {
			if st.Session != nil {
				s.gen++
			}
			clearUserData(st)
			return
		}
		switch {
		case st.Session == nil:
			s.gen++
		case st.Session.UserID != ev.Session.UserID:
			s.gen++
			clearUserData(st)
		}
		sess := *ev.Session
		st.Session = &sess
	})
	return ev.Session != nil
}

func clearUserData(st *State) {
	st.Session = nil
	st.Lists = nil
	st.Budgets = nil
	st.Purchases = nil
	st.PriceHistory = nil
	st.CurrentPage = domain.PageMyLists
	st.CurrentListID = ""
}

// SignOut ends the session remotely and clears local user data. The local
// clear happens even when the remote call fails.
func (s *Store) SignOut(ctx context.Context) error {
	defer s.begin(KeySignOut)()

	if err := s.auth.SignOut(ctx); err != nil {
		s.logger.Warn("remote sign out failed", "error", err)
	}
	s.update(func(st *State) {
		s.gen++
		clearUserData(st)
	})
	return nil
}

// SetCurrentPage navigates. listID is only kept for the list detail page.
func (s *Store) SetCurrentPage(page domain.Page, listID string) {
	if page != domain.PageListDetail {
		listID = ""
	}
	s.update(func(st *State) {
		st.CurrentPage = page
		st.CurrentListID = listID
	})
}

func (s *Store) SetTheme(t domain.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("set theme: %w: %q", ErrInvalidTheme, t)
	}
	if s.prefs != nil {
		if err := s.prefs.SetTheme(t); err != nil {
			return s.fail("set theme", "Could not save your settings.", err)
		}
	}
	s.update(func(st *State) { st.Theme = t })
	return nil
}

func (s *Store) SetHasSeenOnboarding(seen bool) error {
	if s.prefs != nil {
		if err := s.prefs.SetHasSeenOnboarding(seen); err != nil {
			return s.fail("set onboarding", "Could not save your settings.", err)
		}
	}
	s.update(func(st *State) { st.HasSeenOnboarding = seen })
	return nil
}

package domain

import "time"

type Session struct {
	AccessToken string    `json:"accessToken"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type AuthEventType string

const (
	SignedIn     AuthEventType = "SIGNED_IN"
	SignedOut    AuthEventType = "SIGNED_OUT"
	TokenExpired AuthEventType = "TOKEN_EXPIRED"
)

// AuthEvent is emitted by the identity provider whenever the session changes.
// Session is nil for SignedOut and TokenExpired.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

type Page string

const (
	PageWelcome    Page = "welcome"
	PageSetBudget  Page = "setBudget"
	PageMyLists    Page = "myLists"
	PageListDetail Page = "listDetail"
	PageStatistics Page = "statistics"
	PageHistory    Page = "history"
	PageSettings   Page = "settings"
)

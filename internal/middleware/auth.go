package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/listwise/internal/auth"
	"github.com/dukerupert/listwise/internal/store"
)

// RequireAuth validates the bearer token and its backing session row, then
// populates AuthContext. Signed-out sessions are rejected even if the token
// has not expired yet.
func RequireAuth(secret string, sessionStore *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := auth.ValidateToken(secret, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			sess, err := sessionStore.GetByID(claims.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to load session")
				return
			}
			if sess == nil || sess.UserID != claims.Subject {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ac := auth.AuthContext{
				UserID:    sess.UserID,
				Email:     claims.Email,
				SessionID: sess.ID,
				ExpiresAt: sess.ExpiresAt,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

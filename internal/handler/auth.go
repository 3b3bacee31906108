package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/listwise/internal/auth"
	"github.com/dukerupert/listwise/internal/model"
	"github.com/dukerupert/listwise/internal/store"
	"github.com/dukerupert/listwise/internal/validation"
	"github.com/dukerupert/listwise/internal/websocket"
)

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	hub          *websocket.Hub
	validate     *validation.Validator
	secret       string
	sessionTTL   time.Duration
	logger       *slog.Logger
}

func NewAuthHandler(
	us *store.UserStore,
	ss *store.SessionStore,
	hub *websocket.Hub,
	v *validation.Validator,
	secret string,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		hub:          hub,
		validate:     v,
		secret:       secret,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (model.Credentials, bool) {
	var creds model.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return creds, false
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if err := h.validate.Struct(creds); err != nil {
		writeInvalid(w, err)
		return creds, false
	}
	return creds, true
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	existing, err := h.userStore.GetByEmail(creds.Email)
	if err != nil {
		h.logger.Error("signup lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userStore.Create(creds.Email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.issueSession(w, user, http.StatusCreated)
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.userStore.GetByEmail(creds.Email)
	if err != nil {
		h.logger.Error("signin lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, creds.Password) {
		h.logger.Warn("signin failed", "email", creds.Email)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issueSession(w, user, http.StatusOK)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, user *model.User, status int) {
	sess, err := h.sessionStore.Create(user.ID, h.sessionTTL)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	token, err := auth.GenerateToken(h.secret, sess, user.Email)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, status, model.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   sess.ExpiresAt,
		User:        *user,
	})
}

// Logout revokes the caller's session and tells its listeners.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := auth.SessionID(r.Context())
	if err := h.sessionStore.Delete(sessionID); err != nil {
		h.logger.Error("delete session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	n := h.hub.Notify(sessionID, websocket.NewMessage(websocket.TypeSignedOut))
	h.logger.Info("signed out", "user_id", auth.UserID(r.Context()), "listeners", n)
	w.WriteHeader(http.StatusNoContent)
}

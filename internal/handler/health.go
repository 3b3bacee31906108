package handler

import (
	"database/sql"
	"net/http"
)

// ListenerCounter reports how many session listeners are connected.
type ListenerCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	db        *sql.DB
	listeners ListenerCounter
}

func NewHealthHandler(db *sql.DB, listeners ListenerCounter) *HealthHandler {
	return &HealthHandler{db: db, listeners: listeners}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"listeners": h.listeners.ClientCount(),
	})
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/listwise/internal/auth"
	"github.com/dukerupert/listwise/internal/category"
	"github.com/dukerupert/listwise/internal/model"
	"github.com/dukerupert/listwise/internal/store"
	"github.com/dukerupert/listwise/internal/validation"
)

type ItemHandler struct {
	itemStore *store.ItemStore
	validate  *validation.Validator
	logger    *slog.Logger
}

func NewItemHandler(is *store.ItemStore, v *validation.Validator, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{itemStore: is, validate: v, logger: logger}
}

// Create inserts a JSON array of items in one transaction.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req []model.NewItem
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "no items")
		return
	}

	userID := auth.UserID(r.Context())
	for i := range req {
		req[i].UserID = userID
		req[i].Name = strings.TrimSpace(req[i].Name)
		if err := h.validate.Struct(req[i]); err != nil {
			writeInvalid(w, err)
			return
		}
		// Auto-categorize if no category provided
		if strings.TrimSpace(req[i].Category) == "" {
			req[i].Category = category.Guess(req[i].Name)
		}
	}

	items, err := h.itemStore.CreateBatch(userID, req)
	if errors.Is(err, store.ErrListNotFound) {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	if err != nil {
		h.logger.Error("create items", "error", err, "count", len(req))
		writeError(w, http.StatusInternalServerError, "failed to create items")
		return
	}
	writeJSON(w, http.StatusCreated, items)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var patch model.ItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.validate.Struct(patch); err != nil {
		writeInvalid(w, err)
		return
	}

	item, err := h.itemStore.Update(auth.UserID(r.Context()), id, patch)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	deleted, err := h.itemStore.Delete(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("delete item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

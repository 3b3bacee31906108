package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/listwise/internal/auth"
	"github.com/dukerupert/listwise/internal/model"
	"github.com/dukerupert/listwise/internal/store"
	"github.com/dukerupert/listwise/internal/validation"
)

type PurchaseHandler struct {
	purchaseStore *store.PurchaseStore
	validate      *validation.Validator
	logger        *slog.Logger
}

func NewPurchaseHandler(ps *store.PurchaseStore, v *validation.Validator, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{purchaseStore: ps, validate: v, logger: logger}
}

func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchaseStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list purchases", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}

// Create records a JSON array of purchase observations.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req []model.NewPurchase
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "no purchases")
		return
	}

	userID := auth.UserID(r.Context())
	for i := range req {
		req[i].UserID = userID
		req[i].ItemName = strings.TrimSpace(req[i].ItemName)
		if err := h.validate.Struct(req[i]); err != nil {
			writeInvalid(w, err)
			return
		}
	}

	purchases, err := h.purchaseStore.CreateBatch(userID, req)
	if err != nil {
		h.logger.Error("create purchases", "error", err, "count", len(req))
		writeError(w, http.StatusInternalServerError, "failed to record purchases")
		return
	}
	writeJSON(w, http.StatusCreated, purchases)
}

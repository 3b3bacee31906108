package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/listwise/internal/auth"
	"github.com/dukerupert/listwise/internal/model"
	"github.com/dukerupert/listwise/internal/store"
	"github.com/dukerupert/listwise/internal/validation"
)

type BudgetHandler struct {
	budgetStore *store.BudgetStore
	validate    *validation.Validator
	logger      *slog.Logger
}

func NewBudgetHandler(bs *store.BudgetStore, v *validation.Validator, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{budgetStore: bs, validate: v, logger: logger}
}

// List returns the caller's budgets, or only the one for ?year=&month= when
// both are given.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	q := r.URL.Query()

	if q.Has("year") || q.Has("month") {
		year, yerr := strconv.Atoi(q.Get("year"))
		month, merr := strconv.Atoi(q.Get("month"))
		if yerr != nil || merr != nil {
			writeError(w, http.StatusBadRequest, "year and month must both be integers")
			return
		}
		b, err := h.budgetStore.GetByPeriod(userID, year, month)
		if err != nil {
			h.logger.Error("get budget by period", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get budget")
			return
		}
		budgets := []model.Budget{}
		if b != nil {
			budgets = append(budgets, *b)
		}
		writeJSON(w, http.StatusOK, budgets)
		return
	}

	budgets, err := h.budgetStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("list budgets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}
	if budgets == nil {
		budgets = []model.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewBudget
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.UserID = auth.UserID(r.Context())
	if err := h.validate.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	b, err := h.budgetStore.Create(req)
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, "budget already exists for this month")
		return
	}
	if err != nil {
		h.logger.Error("create budget", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create budget")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var patch model.BudgetPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.validate.Struct(patch); err != nil {
		writeInvalid(w, err)
		return
	}

	b, err := h.budgetStore.Update(auth.UserID(r.Context()), id, patch)
	if err != nil {
		h.logger.Error("update budget", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update budget")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

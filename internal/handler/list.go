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

type ListHandler struct {
	listStore *store.ListStore
	validate  *validation.Validator
	logger    *slog.Logger
}

func NewListHandler(ls *store.ListStore, v *validation.Validator, logger *slog.Logger) *ListHandler {
	return &ListHandler{listStore: ls, validate: v, logger: logger}
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.listStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list lists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list lists")
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	list, err := h.listStore.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewList
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.UserID = auth.UserID(r.Context())
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	list, err := h.listStore.Create(req)
	if err != nil {
		h.logger.Error("create list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var patch model.ListPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.validate.Struct(patch); err != nil {
		writeInvalid(w, err)
		return
	}

	list, err := h.listStore.Update(auth.UserID(r.Context()), id, patch)
	if err != nil {
		h.logger.Error("update list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	deleted, err := h.listStore.Delete(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("delete list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete list")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

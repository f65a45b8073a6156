package handler

import (
	"encoding/json"
	"net/http"

	"github.com/budgieapp/budgie-server/internal/models"
)

// CreateIncome stores a new recurring income
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var inc models.Income
	if err := json.NewDecoder(r.Body).Decode(&inc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	inc.UserID = uid
	if err := h.svc.CreateIncome(&inc); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, inc)
}

// ListIncomes returns the user's recurring incomes
func (h *Handler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	incomes, err := h.svc.ListIncomes(uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, incomes)
}

// DeleteIncome removes a recurring income
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteIncome(uid, id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateExpense stores a new recurring expense
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var exp models.Expense
	if err := json.NewDecoder(r.Body).Decode(&exp); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	exp.UserID = uid
	if err := h.svc.CreateExpense(&exp); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, exp)
}

// ListExpenses returns the user's recurring expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	expenses, err := h.svc.ListExpenses(uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// DeleteExpense removes a recurring expense
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpense(uid, id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

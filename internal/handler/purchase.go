package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/budgieapp/budgie-server/internal/models"
)

// CreatePurchase stores a new wish-list purchase
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var p models.Purchase
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.UserID = uid
	p.ClearOutcome() // outcomes are engine-owned, never client-supplied
	if err := h.svc.CreatePurchase(&p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// ListPurchases returns the user's purchases with their latest outcomes
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	purchases, err := h.svc.ListPurchases(uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

// MarkPurchased flags a purchase as bought
func (h *Handler) MarkPurchased(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkPurchased(uid, id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePurchase removes a purchase
func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePurchase(uid, id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Schedule runs the projection engine and returns every purchase with its
// assigned date or failure reason
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	purchases, err := h.svc.SchedulePurchases(uid, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

// Timeline returns the chronological projection of upcoming events
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	events, err := h.svc.Timeline(uid, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// Widget returns the at-a-glance balance graph data
func (h *Handler) Widget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	data, err := h.svc.Widget(uid, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, data)
}

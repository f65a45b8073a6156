package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/budgieapp/budgie-server/internal/models"
)

// maxStatementSize bounds uploaded OFX documents.
const maxStatementSize = 1 << 20

// CreateCheckpoint records a manual balance checkpoint
func (h *Handler) CreateCheckpoint(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var c models.Checkpoint
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.UserID = uid
	if err := h.svc.AddCheckpoint(&c); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// ListCheckpoints returns the user's balance checkpoints, newest first
func (h *Handler) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	checkpoints, err := h.svc.ListCheckpoints(uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, checkpoints)
}

// ImportStatement parses an uploaded OFX statement and records its ledger
// balance as a checkpoint
func (h *Handler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxStatementSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read statement")
		return
	}

	checkpoint, err := h.svc.ImportStatement(uid, body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, checkpoint)
}

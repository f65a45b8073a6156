package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkpoint is a user-asserted balance snapshot: "balance was Amount as of
// Date". Checkpoints are append-only; the latest one defines the current
// balance.
type Checkpoint struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is a wish-list item the scheduler tries to place on a safe date.
// Exactly one of PlannedDate or FailureReason is set after a scheduling run;
// use SetScheduled/SetFailed/ClearOutcome to keep them exclusive.
type Purchase struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	DesiredBy time.Time `json:"desired_by"`
	Purchased bool      `json:"purchased"`

	// Engine-owned outputs, repopulated on every scheduling run.
	PlannedDate      *time.Time `json:"planned_date,omitempty"`
	PredictedBalance *float64   `json:"predicted_balance,omitempty"`
	FailureReason    *string    `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClearOutcome resets the engine-owned output fields.
func (p *Purchase) ClearOutcome() {
	p.PlannedDate = nil
	p.PredictedBalance = nil
	p.FailureReason = nil
}

// SetScheduled records a committed purchase date and the predicted
// post-purchase balance, clearing any previous failure.
func (p *Purchase) SetScheduled(date time.Time, predictedBalance float64) {
	p.PlannedDate = &date
	p.PredictedBalance = &predictedBalance
	p.FailureReason = nil
}

// SetFailed records that no safe date was found, clearing any previous plan.
func (p *Purchase) SetFailed(reason string) {
	p.PlannedDate = nil
	p.PredictedBalance = nil
	p.FailureReason = &reason
}

// Scheduled reports whether the last run assigned a date.
func (p *Purchase) Scheduled() bool {
	return p.PlannedDate != nil
}

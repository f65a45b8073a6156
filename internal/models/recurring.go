package models

import (
	"time"

	"github.com/google/uuid"
)

// Frequency describes how often a recurring item repeats.
type Frequency string

const (
	FrequencyWeekly       Frequency = "weekly"
	FrequencyBiweekly     Frequency = "biweekly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyYearly       Frequency = "yearly"
	FrequencyIntermittent Frequency = "intermittent"
	FrequencyOnce         Frequency = "once"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyYearly, FrequencyIntermittent, FrequencyOnce:
		return true
	}
	return false
}

// Income represents a recurring source of income.
type Income struct {
	ID         uuid.UUID   `json:"id"`
	UserID     int64       `json:"user_id"`
	Name       string      `json:"name"`
	Amount     float64     `json:"amount"`
	Frequency  Frequency   `json:"frequency"`
	Interval   int         `json:"interval"` // every N units; biweekly is always 2 weeks
	TaxPercent float64     `json:"tax_percent"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    *time.Time  `json:"end_date,omitempty"` // nil = never ends
	Dates      []time.Time `json:"dates,omitempty"`    // only when Frequency is intermittent
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NetAmount is the per-occurrence income after the flat tax percentage.
func (i Income) NetAmount() float64 {
	return i.Amount * (1 - i.TaxPercent/100)
}

// Expense represents a recurring cost.
type Expense struct {
	ID        uuid.UUID   `json:"id"`
	UserID    int64       `json:"user_id"`
	Name      string      `json:"name"`
	Cost      float64     `json:"cost"`
	Frequency Frequency   `json:"frequency"`
	Interval  int         `json:"interval"`
	StartDate time.Time   `json:"start_date"`
	EndDate   *time.Time  `json:"end_date,omitempty"`
	Dates     []time.Time `json:"dates,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

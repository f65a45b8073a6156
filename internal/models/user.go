package models

import "time"

// User represents a user in the system along with their scheduler settings.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Not serialized

	StartingBalance float64 `json:"starting_balance"`
	TargetSavings   float64 `json:"target_savings"`
	RainCheckMin    float64 `json:"rain_check_min"`

	// Scheduler settings
	SearchWindowMonths        int  `json:"search_window_months"`
	PrioritizeEarlierDates    bool `json:"prioritize_earlier_dates"`
	PrioritizeSavingsGoal     bool `json:"prioritize_savings_goal"`
	IsRainCheckHardConstraint bool `json:"is_rain_check_hard_constraint"`
	ProjectionHorizonMonths   int  `json:"projection_horizon_months"`
	WidgetTimeframeMonths     int  `json:"widget_timeframe_months"`

	// Last time the reconciliation job folded elapsed events into a checkpoint.
	LastAutoUpdate time.Time `json:"last_auto_update"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

// TimelineEvent is one dated cash event in the projection timeline, for
// display by external surfaces.
type TimelineEvent struct {
	Date       string  `json:"date"` // Format: YYYY-MM-DD
	Amount     float64 `json:"amount"`
	Kind       string  `json:"kind"` // income, expense or purchase
	Title      string  `json:"title"`
	PurchaseID *string `json:"purchase_id,omitempty"`
}

// WidgetPoint is one day of the at-a-glance balance graph.
type WidgetPoint struct {
	Date        string  `json:"date"` // Format: YYYY-MM-DD
	Balance     float64 `json:"balance"`
	HasPurchase bool    `json:"has_purchase"`
}

// WidgetData is the payload served to the summary widget.
type WidgetData struct {
	Points      []WidgetPoint `json:"points"`
	LastUpdated time.Time     `json:"last_updated"`
}

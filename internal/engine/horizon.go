package engine

import (
	"time"

	"github.com/budgieapp/budgie-server/internal/models"
)

// horizonBufferMonths is the slack added past the latest data-driven deadline
// so the search window can overflow without running off the projection.
const horizonBufferMonths = 6

// ResolveHorizon computes how far the projection must extend: the latest rule
// end date or purchase deadline plus a 6-month buffer, but never earlier than
// now + horizonMonths.
func ResolveHorizon(now time.Time, horizonMonths int, incomes []models.Income, expenses []models.Expense, purchases []*models.Purchase) time.Time {
	var maxDate time.Time

	for _, inc := range incomes {
		if inc.EndDate != nil && inc.EndDate.After(maxDate) {
			maxDate = *inc.EndDate
		}
	}
	for _, exp := range expenses {
		if exp.EndDate != nil && exp.EndDate.After(maxDate) {
			maxDate = *exp.EndDate
		}
	}
	for _, p := range purchases {
		if p.DesiredBy.After(maxDate) {
			maxDate = p.DesiredBy
		}
	}

	configured := now.AddDate(0, horizonMonths, 0)
	if maxDate.IsZero() {
		return StartOfDay(configured)
	}

	buffered := maxDate.AddDate(0, horizonBufferMonths, 0)
	if configured.After(buffered) {
		return StartOfDay(configured)
	}
	return StartOfDay(buffered)
}

// Package engine projects a user's future cash balance from recurring
// income/expense rules and greedily assigns each pending purchase the best
// future date on which it can be safely afforded, subject to a
// minimum-balance floor that must hold through the projection horizon.
//
// The engine is synchronous and pure: it performs no I/O, reads no clocks,
// and returns results only by mutating the purchase records it is handed.
// One run owns its projection arrays exclusively; callers wanting concurrent
// runs must give each its own snapshot of the inputs.
package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/budgieapp/budgie-server/internal/models"
)

// Engine runs projections and purchase scheduling.
type Engine struct {
	expander Expander
	log      *logrus.Logger
}

// New creates an engine with the default recurrence safety cap.
func New(log *logrus.Logger) *Engine {
	return &Engine{expander: NewExpander(log), log: log}
}

// Schedule runs one full projection-and-scheduling pass. Every pending
// purchase ends the run either scheduled (planned date + predicted balance)
// or failed (reason); purchased items are untouched. The run never returns an
// error: per-item failures are data, and recurrence safety breaks are local
// to their rule.
func (e *Engine) Schedule(user *models.User, incomes []models.Income, expenses []models.Expense, purchases []*models.Purchase, bal Balance, now time.Time) {
	projStart := StartOfDay(now)
	horizonEnd := ResolveHorizon(now, user.ProjectionHorizonMonths, incomes, expenses, purchases)

	events := e.expander.BuildTimeline(incomes, expenses, projStart, horizonEnd)
	proj := BuildProjection(events, bal, now, projStart, horizonEnd)

	schedulePurchases(proj, purchases, PolicyFor(user), now)

	if e.log != nil {
		e.log.Debugf("Scheduling run complete: %d events over %d days, horizon %s",
			len(events), proj.Days(), horizonEnd.Format("2006-01-02"))
	}
}

// Timeline returns the chronological list of projected events: every mandatory
// income/expense occurrence plus one event per scheduled, not-yet-purchased
// purchase. It is a read-only projection and never mutates the purchases.
func (e *Engine) Timeline(user *models.User, incomes []models.Income, expenses []models.Expense, purchases []*models.Purchase, now time.Time) []Event {
	projStart := StartOfDay(now)
	horizonEnd := ResolveHorizon(now, user.ProjectionHorizonMonths, incomes, expenses, purchases)

	events := e.expander.BuildTimeline(incomes, expenses, projStart, horizonEnd)
	for _, p := range purchases {
		if p.Purchased || p.PlannedDate == nil {
			continue
		}
		events = append(events, Event{
			Date:     StartOfDay(*p.PlannedDate),
			Amount:   -p.Price,
			Kind:     EventPurchase,
			Title:    p.Name,
			Purchase: p,
		})
	}

	sortEventsByDate(events)
	return events
}

// Package jobs holds the periodic background tasks: balance reconciliation
// for elapsed events and purchase-day reminder delivery.
package jobs

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/budgieapp/budgie-server/internal/engine"
	"github.com/budgieapp/budgie-server/internal/models"
	"github.com/budgieapp/budgie-server/internal/repository"
	"github.com/budgieapp/budgie-server/internal/utils/email"
)

// Reconciler folds income/expense events that fired since each user's last
// auto-update into a fresh balance checkpoint, so the stored balance keeps up
// with the calendar without manual entry. Purchases are never auto-deducted;
// marking them bought is a user action.
type Reconciler struct {
	repo     *repository.Repository
	log      *logrus.Logger
	sender   *email.Sender
	expander engine.Expander
}

// NewReconciler creates the reconciliation job
func NewReconciler(repo *repository.Repository, log *logrus.Logger, sender *email.Sender) *Reconciler {
	return &Reconciler{
		repo:     repo,
		log:      log,
		sender:   sender,
		expander: engine.NewExpander(log),
	}
}

// Run reconciles every user once
func (r *Reconciler) Run(now time.Time) {
	ids, err := r.repo.ListUserIDs()
	if err != nil {
		r.log.Errorf("Reconciliation: failed to list users: %v", err)
		return
	}
	for _, id := range ids {
		if err := r.reconcileUser(id, now); err != nil {
			r.log.Errorf("Reconciliation failed for user %d: %v", id, err)
		}
	}
}

// reconcileUser applies every event in the half-open window
// (lastAutoUpdate, now] to the user's balance
func (r *Reconciler) reconcileUser(userID int64, now time.Time) error {
	user, err := r.repo.FindUserByID(userID)
	if err != nil {
		return err
	}
	incomes, err := r.repo.ListIncomes(userID)
	if err != nil {
		return err
	}
	expenses, err := r.repo.ListExpenses(userID)
	if err != nil {
		return err
	}

	windowStart := engine.StartOfDay(user.LastAutoUpdate)
	windowEnd := engine.StartOfDay(now)

	var netChange float64
	eventsProcessed := 0
	for _, ev := range r.expander.BuildTimeline(incomes, expenses, windowStart, windowEnd) {
		// The window start day was covered by the previous run.
		if !ev.Date.After(windowStart) {
			continue
		}
		netChange += ev.Amount
		eventsProcessed++
	}

	if eventsProcessed == 0 || math.Abs(netChange) <= 0.01 {
		return r.repo.UpdateLastAutoUpdate(userID, now)
	}

	current := user.StartingBalance
	if latest, err := r.repo.LatestCheckpoint(userID); err != nil {
		return err
	} else if latest != nil {
		current = latest.Amount
	}

	checkpoint := &models.Checkpoint{
		UserID: userID,
		Date:   now,
		Amount: current + netChange,
	}
	if err := r.repo.CreateCheckpoint(checkpoint); err != nil {
		return err
	}
	if err := r.repo.UpdateLastAutoUpdate(userID, now); err != nil {
		return err
	}

	r.log.Infof("Balance reconciled for user %d: %+.2f over %d events", userID, netChange, eventsProcessed)

	if r.sender != nil {
		if err := r.sender.SendBalanceUpdate(user.Email, user.Username, netChange, checkpoint.Amount, eventsProcessed); err != nil {
			r.log.Warnf("Failed to notify user %d of balance update: %v", userID, err)
		}
	}
	return nil
}

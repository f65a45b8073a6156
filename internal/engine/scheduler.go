package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/budgieapp/budgie-server/internal/models"
)

// Policy carries the user settings the scheduler needs for one run.
type Policy struct {
	RainCheckMin           float64
	HardConstraint         bool
	TargetSavings          float64
	SearchWindowMonths     int
	PrioritizeSavingsGoal  bool
	PrioritizeEarlierDates bool
}

// PolicyFor extracts the scheduling policy from a user record.
func PolicyFor(u *models.User) Policy {
	return Policy{
		RainCheckMin:           u.RainCheckMin,
		HardConstraint:         u.IsRainCheckHardConstraint,
		TargetSavings:          u.TargetSavings,
		SearchWindowMonths:     u.SearchWindowMonths,
		PrioritizeSavingsGoal:  u.PrioritizeSavingsGoal,
		PrioritizeEarlierDates: u.PrioritizeEarlierDates,
	}
}

// floor is the minimum balance that must survive a purchase. Relaxed to zero
// unless the rain-check is a hard constraint.
func (pol Policy) floor() float64 {
	if !pol.HardConstraint {
		return 0
	}
	if pol.RainCheckMin > 0 {
		return pol.RainCheckMin
	}
	return 0
}

// schedulePurchases assigns each pending purchase the highest-scoring safe
// day, committing one item at a time against the shared projection. Outcomes
// are written onto the purchase records; a per-item failure never aborts the
// run.
func schedulePurchases(p *Projection, purchases []*models.Purchase, pol Policy, now time.Time) {
	// Reset engine outputs on every pending request before scheduling.
	pending := make([]*models.Purchase, 0, len(purchases))
	for _, item := range purchases {
		if item.Purchased {
			continue
		}
		item.ClearOutcome()
		pending = append(pending, item)
	}

	// Earlier desired dates get first claim on scarce capacity; price breaks
	// ties. This order is part of the observable contract.
	sort.SliceStable(pending, func(i, j int) bool {
		di, dj := StartOfDay(pending[i].DesiredBy), StartOfDay(pending[j].DesiredBy)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return pending[i].Price < pending[j].Price
	})

	floor := pol.floor()
	windowDays := pol.SearchWindowMonths * 30
	today := StartOfDay(now)
	n := p.Days()

	for _, item := range pending {
		// A desired date in the past is clamped forward to today.
		desired := StartOfDay(item.DesiredBy)
		if desired.Before(today) {
			desired = today
		}
		desiredIdx := p.IndexOf(desired)
		if desiredIdx < 0 {
			desiredIdx = 0
		}
		if desiredIdx > n-1 {
			desiredIdx = n - 1
		}

		searchStart := desiredIdx - windowDays
		if searchStart < 0 {
			searchStart = 0
		}
		searchEnd := desiredIdx + windowDays
		if searchEnd > n-1 {
			searchEnd = n - 1
		}

		bestIdx := -1
		bestScore := 0.0

		scan := func(from, to int) {
			for i := from; i <= to; i++ {
				base := p.Balances[i]
				if base-item.Price < floor || p.MinFuture[i]-item.Price < floor {
					continue
				}
				score := scoreDay(i, desiredIdx, base, item.Price, windowDays, pol)
				// Strict > keeps the first-found maximum, so earlier-scanned
				// days win ties.
				if bestIdx == -1 || score > bestScore {
					bestIdx = i
					bestScore = score
				}
			}
		}

		// Primary window first; the horizon-wide extension only runs on
		// total primary failure, never to look for a better score.
		scan(searchStart, searchEnd)
		if bestIdx == -1 && searchEnd+1 <= n-1 {
			scan(searchEnd+1, n-1)
		}
		if bestIdx == -1 && searchStart-1 >= 0 {
			scan(0, searchStart-1)
		}

		if bestIdx == -1 {
			item.SetFailed(fmt.Sprintf(
				"no safe date for %.2f: every day in the %d-day projection would drop the balance below %.2f",
				item.Price, n, floor))
			continue
		}

		item.SetScheduled(p.DateAt(bestIdx), p.Balances[bestIdx]-item.Price)
		p.Commit(bestIdx, item.Price)
	}
}

// scoreDay rates an eligible candidate day; higher wins.
func scoreDay(i, desiredIdx int, base, price float64, windowDays int, pol Policy) float64 {
	var score float64

	// Distance: decays linearly to zero at the edge of the search span.
	dist := i - desiredIdx
	if dist < 0 {
		dist = -dist
	}
	span := float64(windowDays * 2)
	if d := 100 * (1 - float64(dist)/(span+1)); d > 0 {
		score += d
	}

	// Savings goal: rewards days that stay above target, and when
	// prioritized, rewards landing just above it rather than far above.
	afterPurchase := base - price
	if pol.PrioritizeSavingsGoal {
		if afterPurchase >= pol.TargetSavings {
			score += 50
			surplus := afterPurchase - pol.TargetSavings
			slack := pol.TargetSavings * 0.10
			if slack < 100 {
				slack = 100
			}
			if surplus <= slack {
				score += 50
			}
		}
	} else if afterPurchase >= pol.TargetSavings {
		score += 10
	}

	// Earliness: beating the desired date earns a flat bonus plus 5 per day.
	if pol.PrioritizeEarlierDates && i < desiredIdx {
		score += float64(desiredIdx-i) * 5
		score += 100
	}

	return score
}

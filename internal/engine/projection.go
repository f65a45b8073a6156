package engine

import "time"

// Balance is the engine's view of the user's current money: the amount of the
// latest checkpoint (or the starting balance) and the date it was asserted.
// A zero CheckpointDate means no checkpoint exists.
type Balance struct {
	Current        float64
	CheckpointDate time.Time
}

// Fresh reports whether the checkpoint already reflects today's events: it is
// dated today or later (clock skew tolerant).
func (b Balance) Fresh(now time.Time) bool {
	if b.CheckpointDate.IsZero() {
		return false
	}
	return SameDay(b.CheckpointDate, now) || b.CheckpointDate.After(now)
}

// Projection is the day-indexed state of one scheduling run: end-of-day
// balances and their suffix minima over [Start, Start+Days-1]. It is owned by
// a single run and must not be shared across concurrent runs.
type Projection struct {
	Start     time.Time // start-of-day
	Balances  []float64
	MinFuture []float64
}

// Days is the number of days covered, inclusive of both ends.
func (p *Projection) Days() int {
	return len(p.Balances)
}

// IndexOf maps a date to its day index. The result may be out of range; the
// caller clamps.
func (p *Projection) IndexOf(d time.Time) int {
	return int(StartOfDay(d).Sub(p.Start).Hours() / 24)
}

// DateAt maps a day index back to its calendar date.
func (p *Projection) DateAt(i int) time.Time {
	return p.Start.AddDate(0, 0, i)
}

// BuildProjection converts the event timeline into per-day end-of-day
// balances from projStart through horizonEnd inclusive.
//
// Events strictly before today never apply (they are assumed folded into the
// balance); events dated today apply only when the checkpoint is not fresh.
// The running total starts at the current balance and begins moving at the
// later of the checkpoint date and now; days before that keep the day-0
// total, so history is never retroactively altered.
func BuildProjection(events []Event, bal Balance, now, projStart, horizonEnd time.Time) *Projection {
	start := StartOfDay(projStart)
	end := StartOfDay(horizonEnd)
	today := StartOfDay(now)

	totalDays := int(end.Sub(start).Hours()/24) + 1
	if totalDays < 1 {
		totalDays = 1
	}

	// Net change per day, after the freshness filter.
	fresh := bal.Fresh(now)
	changes := make([]float64, totalDays)
	for _, ev := range events {
		day := StartOfDay(ev.Date)
		if day.Before(today) {
			continue
		}
		if day.Equal(today) && fresh {
			continue
		}
		idx := int(day.Sub(start).Hours() / 24)
		if idx >= 0 && idx < totalDays {
			changes[idx] += ev.Amount
		}
	}

	// Changes only apply from the later of the checkpoint date and now.
	trackingStart := bal.CheckpointDate
	if trackingStart.IsZero() {
		trackingStart = start
	}
	effectiveStart := trackingStart
	if now.After(effectiveStart) {
		effectiveStart = now
	}
	effectiveIdx := int(StartOfDay(effectiveStart).Sub(start).Hours() / 24)
	if effectiveIdx < 0 {
		effectiveIdx = 0
	}

	p := &Projection{
		Start:     start,
		Balances:  make([]float64, totalDays),
		MinFuture: make([]float64, totalDays),
	}
	running := bal.Current
	for i := 0; i < totalDays; i++ {
		if i >= effectiveIdx {
			running += changes[i]
		}
		p.Balances[i] = running
	}

	p.rebuildMinFuture(totalDays - 1)
	return p
}

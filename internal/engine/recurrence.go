package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/budgieapp/budgie-server/internal/models"
)

// DefaultMaxOccurrences bounds how many occurrences a single rule may emit.
// It is a safety break against calendar arithmetic that fails to advance;
// tests shrink it to exercise the abort path.
const DefaultMaxOccurrences = 10000

// Rule is one recurring-item definition, ready for expansion.
type Rule struct {
	Frequency models.Frequency
	Interval  int // every N units; clamped to at least 1
	Start     time.Time
	End       *time.Time  // nil = never ends
	Explicit  []time.Time // authoritative when Frequency is intermittent
}

// Expander turns rules into bounded sequences of occurrence dates.
type Expander struct {
	MaxOccurrences int
	Log            *logrus.Logger
}

// NewExpander returns an expander with the default safety cap.
func NewExpander(log *logrus.Logger) Expander {
	return Expander{MaxOccurrences: DefaultMaxOccurrences, Log: log}
}

// Expand produces every occurrence of r that falls inside both the rule's own
// bounds and the inclusive window [windowStart, windowEnd]. All comparisons
// are at day granularity. A calendar step that fails to advance aborts
// expansion for this rule only.
func (e Expander) Expand(r Rule, windowStart, windowEnd time.Time) []time.Time {
	winStart := StartOfDay(windowStart)
	winEnd := StartOfDay(windowEnd)
	itemStart := StartOfDay(r.Start)
	var itemEnd *time.Time
	if r.End != nil {
		d := StartOfDay(*r.End)
		itemEnd = &d
	}

	inBounds := func(d time.Time) bool {
		if d.Before(winStart) || d.After(winEnd) {
			return false
		}
		if d.Before(itemStart) {
			return false
		}
		if itemEnd != nil && d.After(*itemEnd) {
			return false
		}
		return true
	}

	switch r.Frequency {
	case models.FrequencyIntermittent:
		// Explicit dates are authoritative; no stepping.
		var out []time.Time
		for _, d := range r.Explicit {
			day := StartOfDay(d)
			if inBounds(day) {
				out = append(out, day)
			}
		}
		return out

	case models.FrequencyOnce:
		if inBounds(itemStart) {
			return []time.Time{itemStart}
		}
		return nil
	}

	maxOcc := e.MaxOccurrences
	if maxOcc <= 0 {
		maxOcc = DefaultMaxOccurrences
	}

	var out []time.Time
	current := itemStart
	for iterations := 0; !current.After(winEnd) && (itemEnd == nil || !current.After(*itemEnd)); iterations++ {
		if iterations >= maxOcc {
			if e.Log != nil {
				e.Log.Warnf("recurrence safety break: exceeded %d occurrences for rule starting %s", maxOcc, itemStart.Format("2006-01-02"))
			}
			break
		}
		if !current.Before(winStart) {
			out = append(out, current)
		}
		next, ok := e.step(r, current)
		if !ok {
			if e.Log != nil {
				e.Log.Warnf("recurrence safety break: date failed to advance for rule starting %s", itemStart.Format("2006-01-02"))
			}
			break
		}
		current = next
	}
	return out
}

// step advances one occurrence by the rule's calendar field. It reports false
// when the computed date does not move forward.
func (e Expander) step(r Rule, from time.Time) (time.Time, bool) {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch r.Frequency {
	case models.FrequencyWeekly:
		next = from.AddDate(0, 0, 7*interval)
	case models.FrequencyBiweekly:
		// Always every two weeks, regardless of the supplied interval.
		next = from.AddDate(0, 0, 14)
	case models.FrequencyMonthly:
		next = from.AddDate(0, interval, 0)
	case models.FrequencyYearly:
		next = from.AddDate(interval, 0, 0)
	default:
		return time.Time{}, false
	}

	if !next.After(from) {
		return time.Time{}, false
	}
	return next, true
}

// StartOfDay truncates t to midnight UTC. The engine buckets every event to
// calendar days in a single fixed calendar.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

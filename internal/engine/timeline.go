package engine

import (
	"sort"
	"time"

	"github.com/budgieapp/budgie-server/internal/models"
)

// EventKind classifies a projected cash event.
type EventKind string

const (
	EventIncome   EventKind = "income"
	EventExpense  EventKind = "expense"
	EventPurchase EventKind = "purchase"
)

// Event is one generated occurrence on the projection timeline. Events are
// ephemeral: produced fresh on every run, never persisted.
type Event struct {
	Date     time.Time
	Amount   float64
	Kind     EventKind
	Title    string
	Purchase *models.Purchase // set only for scheduled purchase events
}

// ruleFor maps a recurring record's fields onto an expansion rule.
func ruleFor(freq models.Frequency, interval int, start time.Time, end *time.Time, dates []time.Time) Rule {
	if freq == models.FrequencyBiweekly {
		interval = 2
	}
	return Rule{
		Frequency: freq,
		Interval:  interval,
		Start:     start,
		End:       end,
		Explicit:  dates,
	}
}

// BuildTimeline expands every income and expense over the projection window
// into one chronological event list. Income occurrences carry the net-of-tax
// amount; expense occurrences are negated. Same-day events are not netted
// here; the projector sums them per day.
func (e Expander) BuildTimeline(incomes []models.Income, expenses []models.Expense, windowStart, windowEnd time.Time) []Event {
	var events []Event

	for _, inc := range incomes {
		rule := ruleFor(inc.Frequency, inc.Interval, inc.StartDate, inc.EndDate, inc.Dates)
		net := inc.NetAmount()
		for _, d := range e.Expand(rule, windowStart, windowEnd) {
			events = append(events, Event{Date: d, Amount: net, Kind: EventIncome, Title: inc.Name})
		}
	}

	for _, exp := range expenses {
		rule := ruleFor(exp.Frequency, exp.Interval, exp.StartDate, exp.EndDate, exp.Dates)
		for _, d := range e.Expand(rule, windowStart, windowEnd) {
			events = append(events, Event{Date: d, Amount: -exp.Cost, Kind: EventExpense, Title: exp.Name})
		}
	}

	sortEventsByDate(events)
	return events
}

// sortEventsByDate orders events chronologically, keeping input order within
// a day. Same-day effects are summed before any balance is read, so intra-day
// order never changes a projection.
func sortEventsByDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgieapp/budgie-server/internal/models"
)

func TestBuildTimelineNetIncomeAndNegatedExpense(t *testing.T) {
	e := NewExpander(nil)
	incomes := []models.Income{{
		Name:       "Salary",
		Amount:     5000,
		TaxPercent: 0,
		Frequency:  models.FrequencyOnce,
		StartDate:  date(2025, 6, 10),
	}}
	expenses := []models.Expense{{
		Name:      "Rent",
		Cost:      1000,
		Frequency: models.FrequencyOnce,
		StartDate: date(2025, 6, 5),
	}}

	events := e.BuildTimeline(incomes, expenses, date(2025, 6, 1), date(2025, 6, 30))
	require.Len(t, events, 2)

	// Chronological: rent first, then salary.
	assert.Equal(t, EventExpense, events[0].Kind)
	assert.Equal(t, -1000.0, events[0].Amount)
	assert.Equal(t, EventIncome, events[1].Kind)
	assert.Equal(t, 5000.0, events[1].Amount)
}

func TestBuildTimelineAppliesTax(t *testing.T) {
	e := NewExpander(nil)
	incomes := []models.Income{{
		Name:       "Contract",
		Amount:     5000,
		TaxPercent: 20,
		Frequency:  models.FrequencyOnce,
		StartDate:  date(2025, 6, 10),
	}}

	events := e.BuildTimeline(incomes, nil, date(2025, 6, 1), date(2025, 6, 30))
	require.Len(t, events, 1)
	assert.InDelta(t, 4000.0, events[0].Amount, 1e-9)
}

func TestBuildTimelineSortedByDate(t *testing.T) {
	e := NewExpander(nil)
	expenses := []models.Expense{
		{Name: "Gym", Cost: 50, Frequency: models.FrequencyWeekly, Interval: 1, StartDate: date(2025, 6, 4)},
		{Name: "Rent", Cost: 1200, Frequency: models.FrequencyMonthly, Interval: 1, StartDate: date(2025, 6, 1)},
	}

	events := e.BuildTimeline(nil, expenses, date(2025, 6, 1), date(2025, 7, 31))
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.Before(events[i-1].Date), "events must be chronological")
	}
}

func TestResolveHorizonDefault(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	got := ResolveHorizon(now, 12, nil, nil, nil)
	assert.Equal(t, date(2026, 6, 1), got)
}

func TestResolveHorizonExtendsPastLatestDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	purchases := []*models.Purchase{{Name: "Car", Price: 9000, DesiredBy: date(2027, 1, 15)}}

	// Latest deadline plus the six-month buffer beats now + 12 months.
	got := ResolveHorizon(now, 12, nil, nil, purchases)
	assert.Equal(t, date(2027, 7, 15), got)
}

func TestResolveHorizonKeepsConfiguredMinimum(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	incomes := []models.Income{{EndDate: datePtr(2025, 7, 1)}}

	// End date + buffer lands before the configured horizon, which wins.
	got := ResolveHorizon(now, 12, incomes, nil, nil)
	assert.Equal(t, date(2026, 6, 1), got)
}

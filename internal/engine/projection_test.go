package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProjectionRunningBalance(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Date: date(2025, 6, 3), Amount: 1000, Kind: EventIncome},
		{Date: date(2025, 6, 5), Amount: -300, Kind: EventExpense},
	}

	p := BuildProjection(events, Balance{Current: 100}, now, date(2025, 6, 1), date(2025, 6, 7))
	require.Equal(t, 7, p.Days())

	assert.Equal(t, []float64{100, 100, 1100, 1100, 800, 800, 800}, p.Balances)
}

func TestBuildProjectionFreshCheckpointSkipsTodayEvents(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Date: date(2025, 6, 1), Amount: -500, Kind: EventExpense}, // today
		{Date: date(2025, 6, 2), Amount: -100, Kind: EventExpense},
	}

	// Checkpoint dated today: today's expense is already in the balance.
	fresh := BuildProjection(events, Balance{Current: 1000, CheckpointDate: now}, now, date(2025, 6, 1), date(2025, 6, 3))
	assert.Equal(t, []float64{1000, 900, 900}, fresh.Balances)

	// Stale checkpoint from yesterday: today's expense still applies.
	stale := BuildProjection(events, Balance{Current: 1000, CheckpointDate: date(2025, 5, 31)}, now, date(2025, 6, 1), date(2025, 6, 3))
	assert.Equal(t, []float64{500, 400, 400}, stale.Balances)
}

func TestBuildProjectionSkipsPastEvents(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Date: date(2025, 6, 5), Amount: -500, Kind: EventExpense}, // already elapsed
		{Date: date(2025, 6, 12), Amount: 200, Kind: EventIncome},
	}

	p := BuildProjection(events, Balance{Current: 1000}, now, date(2025, 6, 10), date(2025, 6, 14))
	assert.Equal(t, []float64{1000, 1000, 1200, 1200, 1200}, p.Balances)
}

func TestSuffixMinimumBackwardPass(t *testing.T) {
	p := &Projection{
		Start:     date(2025, 6, 1),
		Balances:  []float64{500, 200, 800, 100, 900},
		MinFuture: make([]float64, 5),
	}
	p.rebuildMinFuture(4)

	assert.Equal(t, []float64{100, 100, 100, 100, 900}, p.MinFuture)
}

func TestCommitLowersBalancesAndMinFuture(t *testing.T) {
	p := &Projection{
		Start:     date(2025, 6, 1),
		Balances:  []float64{500, 200, 800, 100, 900},
		MinFuture: make([]float64, 5),
	}
	p.rebuildMinFuture(4)

	p.Commit(2, 50)

	assert.Equal(t, []float64{500, 200, 750, 50, 850}, p.Balances)
	// The lowered future must propagate back through earlier days.
	assert.Equal(t, []float64{50, 50, 50, 50, 850}, p.MinFuture)
}

func TestCommitMatchesFullRecompute(t *testing.T) {
	p := &Projection{
		Start:     date(2025, 6, 1),
		Balances:  []float64{500, 200, 800, 100, 900, 400, 1200},
		MinFuture: make([]float64, 7),
	}
	p.rebuildMinFuture(6)

	p.Commit(3, 75)
	p.Commit(1, 25)
	p.Commit(5, 10)

	fromScratch := &Projection{
		Start:     p.Start,
		Balances:  append([]float64(nil), p.Balances...),
		MinFuture: make([]float64, p.Days()),
	}
	fromScratch.rebuildMinFuture(fromScratch.Days() - 1)

	assert.Equal(t, fromScratch.MinFuture, p.MinFuture)
}

func TestBalanceFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.False(t, Balance{}.Fresh(now))
	assert.False(t, Balance{CheckpointDate: date(2025, 5, 31)}.Fresh(now))
	assert.True(t, Balance{CheckpointDate: date(2025, 6, 1)}.Fresh(now))
	// Clock skew tolerant: a checkpoint from later today or tomorrow counts.
	assert.True(t, Balance{CheckpointDate: time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)}.Fresh(now))
	assert.True(t, Balance{CheckpointDate: date(2025, 6, 2)}.Fresh(now))
}

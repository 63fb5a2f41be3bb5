package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRecurrence_Weekly(t *testing.T) {
	seed := day(2025, 6, 2) // Monday
	horizon := seed.AddDate(0, 1, 0)

	dates, err := ExpandRecurrence("FREQ=WEEKLY", seed, horizon)
	require.NoError(t, err)
	require.NotEmpty(t, dates)

	assert.Equal(t, DayKey("2025-06-02"), DayKeyFor(dates[0]), "seed date is always the first occurrence")
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, DayKeyFor(dates[i-1].AddDate(0, 0, 7)), DayKeyFor(dates[i]))
	}
	for _, d := range dates {
		assert.False(t, d.After(horizon), "occurrence %s exceeds horizon", DayKeyFor(d))
	}
	assert.Len(t, dates, 5)
}

func TestExpandRecurrence_CountLimited(t *testing.T) {
	seed := day(2025, 6, 2)
	horizon := seed.AddDate(1, 0, 0)

	dates, err := ExpandRecurrence("FREQ=WEEKLY;COUNT=3", seed, horizon)
	require.NoError(t, err)
	assert.Len(t, dates, 3)
}

func TestExpandRecurrence_InvalidRule(t *testing.T) {
	_, err := ExpandRecurrence("NOT_AN_RRULE", day(2025, 6, 2), day(2025, 12, 2))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse recurrence rule")
}

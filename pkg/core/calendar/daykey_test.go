package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKeyFor(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected DayKey
	}{
		{
			name:     "single digit month and day are zero padded",
			date:     time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local),
			expected: "2025-03-05",
		},
		{
			name:     "time of day is ignored",
			date:     time.Date(2025, 12, 31, 23, 59, 59, 0, time.Local),
			expected: "2025-12-31",
		},
		{
			name:     "uses the time's own fields without conversion",
			date:     time.Date(2025, 7, 1, 0, 30, 0, 0, time.UTC),
			expected: "2025-07-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DayKeyFor(tt.date))
		})
	}
}

func TestDayKeyDate(t *testing.T) {
	date, err := DayKey("2025-03-05").Date()
	require.NoError(t, err)

	assert.Equal(t, 2025, date.Year())
	assert.Equal(t, time.March, date.Month())
	assert.Equal(t, 5, date.Day())

	// Rehydrated at noon so later day arithmetic cannot cross DST at midnight.
	assert.Equal(t, 12, date.Hour())
}

func TestDayKeyRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2025, 1, 1, 8, 0, 0, 0, time.Local),
		time.Date(2025, 6, 30, 19, 30, 0, 0, time.Local),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local), // leap day
	}

	for _, d := range dates {
		key := DayKeyFor(d)
		back, err := key.Date()
		require.NoError(t, err)
		assert.Equal(t, d.Year(), back.Year())
		assert.Equal(t, d.Month(), back.Month())
		assert.Equal(t, d.Day(), back.Day())
		assert.Equal(t, key, DayKeyFor(back))
	}
}

func TestDayKeyDate_Invalid(t *testing.T) {
	_, err := DayKey("not-a-date").Date()
	assert.Error(t, err)
}

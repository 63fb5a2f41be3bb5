package calendar

import (
	"fmt"
	"time"
)

// DayKey is the canonical YYYY-MM-DD form of a calendar date, used as a map
// key throughout the calendar core. Keys compare lexicographically in date
// order.
type DayKey string

// DayKeyFor formats the time's own year/month/day fields as a zero-padded day
// key. No timezone conversion happens here; callers supply an already-local
// time.
func DayKeyFor(t time.Time) DayKey {
	return DayKey(fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()))
}

// Date parses the key back into a time. The result carries a noon wall-clock
// time so that later day arithmetic cannot slip across a DST transition at
// midnight.
func (k DayKey) Date() (time.Time, error) {
	var year, month, day int
	if _, err := fmt.Sscanf(string(k), "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse day key %q: %w", k, err)
	}
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local), nil
}

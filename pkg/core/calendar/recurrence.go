package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// ExpandRecurrence returns the occurrence dates of an RRULE seeded at the
// given first date, up to and including the horizon. The seed date itself is
// always the first occurrence. Occurrences keep the seed's wall-clock time.
func ExpandRecurrence(rule string, seed, horizon time.Time) ([]time.Time, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recurrence rule %q: %w", rule, err)
	}
	r.DTStart(seed)

	occurrences := r.Between(seed, horizon, true)
	if len(occurrences) == 0 || DayKeyFor(occurrences[0]) != DayKeyFor(seed) {
		occurrences = append([]time.Time{seed}, occurrences...)
	}
	return occurrences, nil
}

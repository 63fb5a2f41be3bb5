package calendar

import (
	"fmt"
	"sort"
	"time"
)

// EventKind discriminates the three calendar event sources.
type EventKind string

const (
	KindGig       EventKind = "gig"
	KindRehearsal EventKind = "rehearsal"
	KindBlockOut  EventKind = "block_out"
)

// Event is a derived, immutable calendar entry. Each refresh produces a
// complete replacement list; events are never mutated in place.
type Event struct {
	ID        string
	Kind      EventKind
	Title     string
	Date      time.Time
	StartTime string        // "HH:MM", empty for block-outs
	SetlistID string        // rehearsals only
	Span      *BlockOutSpan // block-outs only
}

// IsGig reports whether the event is a gig.
func (e Event) IsGig() bool { return e.Kind == KindGig }

// IsRehearsal reports whether the event is a rehearsal.
func (e Event) IsRehearsal() bool { return e.Kind == KindRehearsal }

// IsBlockOut reports whether the event is a block-out.
func (e Event) IsBlockOut() bool { return e.Kind == KindBlockOut }

// DayKey returns the event's canonical day key.
func (e Event) DayKey() DayKey { return DayKeyFor(e.Date) }

// untimedMinutes places events without a parsable start time after every
// timed event on the same day.
const untimedMinutes = 24 * 60

// startMinutes converts an "HH:MM" start time to minutes since midnight.
// Empty or unparsable values return untimedMinutes.
func startMinutes(startTime string) int {
	var hours, minutes int
	if _, err := fmt.Sscanf(startTime, "%d:%d", &hours, &minutes); err != nil {
		return untimedMinutes
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return untimedMinutes
	}
	return hours*60 + minutes
}

// SortEvents orders events by date ascending, ties broken by start time in
// minutes ascending. Block-outs carry an empty start time and therefore sort
// after timed events on the same day. The sort is stable.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ki, kj := events[i].DayKey(), events[j].DayKey()
		if ki != kj {
			return ki < kj
		}
		return startMinutes(events[i].StartTime) < startMinutes(events[j].StartTime)
	})
}

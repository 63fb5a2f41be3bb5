package calendar

import (
	"sort"
	"time"

	"github.com/bandhq/backline/pkg/db"
)

// FallbackMemberName is used when a block-out author's display name cannot be
// resolved.
const FallbackMemberName = "Member"

// BlockOutSpan is a maximal run of consecutive block-out days for one member
// and one reason. End is never before Start; a single-day block-out has
// Start == End.
type BlockOutSpan struct {
	Start      time.Time
	End        time.Time
	Reason     string
	MemberID   string
	MemberName string
}

// GroupBlockOuts coalesces per-day block-out records into contiguous spans.
// Records are sorted by (memberID, date) so each member's streaks become
// contiguous in the scan. A span is extended only when the member matches,
// the reason matches exactly (case-sensitive, untrimmed) and the date is
// exactly one calendar day after the span's current end; spans are never
// merged across members.
func GroupBlockOuts(records []db.BlockOut, names map[string]string) []BlockOutSpan {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]db.BlockOut, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MemberID != sorted[j].MemberID {
			return sorted[i].MemberID < sorted[j].MemberID
		}
		return DayKeyFor(sorted[i].Date) < DayKeyFor(sorted[j].Date)
	})

	var spans []BlockOutSpan
	open := spanFor(sorted[0], names)
	for _, rec := range sorted[1:] {
		if rec.MemberID == open.MemberID && rec.Reason == open.Reason && isNextDay(open.End, rec.Date) {
			open.End = rec.Date
			continue
		}
		spans = append(spans, open)
		open = spanFor(rec, names)
	}
	spans = append(spans, open)

	return spans
}

func spanFor(rec db.BlockOut, names map[string]string) BlockOutSpan {
	name, ok := names[rec.MemberID]
	if !ok || name == "" {
		name = FallbackMemberName
	}
	return BlockOutSpan{
		Start:      rec.Date,
		End:        rec.Date,
		Reason:     rec.Reason,
		MemberID:   rec.MemberID,
		MemberName: name,
	}
}

// isNextDay compares by day key so time-of-day differences between records
// cannot break or fake a streak.
func isNextDay(end, date time.Time) bool {
	return DayKeyFor(end.AddDate(0, 0, 1)) == DayKeyFor(date)
}

// Days expands the span into the day keys it covers, in ascending order.
func (s BlockOutSpan) Days() []DayKey {
	endKey := DayKeyFor(s.End)
	if DayKeyFor(s.Start) > endKey {
		return nil
	}
	var keys []DayKey
	for d := s.Start; ; d = d.AddDate(0, 0, 1) {
		key := DayKeyFor(d)
		keys = append(keys, key)
		if key == endKey {
			return keys
		}
	}
}

package calendar

// DayMarkers summarizes one day's events for calendar grid indicators, so the
// grid can render without re-scanning the full event list.
type DayMarkers struct {
	Gig           bool
	Rehearsal     bool
	BlockOut      bool
	BlockOutCount int
}

// BuildMarkers indexes gigs, rehearsals and block-out spans into per-day
// marker records. Days with no events are absent from the map; callers must
// treat a missing key as "no markers". BlockOutCount increments once per span
// covering the day, with no dedup across spans, so two members blocking the
// same day both count. Map iteration order carries no meaning.
func BuildMarkers(gigs, rehearsals []Event, spans []BlockOutSpan) map[DayKey]*DayMarkers {
	markers := make(map[DayKey]*DayMarkers)
	at := func(key DayKey) *DayMarkers {
		m, ok := markers[key]
		if !ok {
			m = &DayMarkers{}
			markers[key] = m
		}
		return m
	}

	for _, g := range gigs {
		at(g.DayKey()).Gig = true
	}
	for _, r := range rehearsals {
		at(r.DayKey()).Rehearsal = true
	}
	for _, s := range spans {
		for _, day := range s.Days() {
			m := at(day)
			m.BlockOut = true
			m.BlockOutCount++
		}
	}

	return markers
}

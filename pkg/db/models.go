package db

import "time"

// Band is the tenant unit that scopes almost all data.
type Band struct {
	ID   string
	Name string
}

// Member is one person's membership in a band.
type Member struct {
	ID          string
	BandID      string
	DisplayName string
	Role        string
}

// Gig represents a booked performance on a single date.
type Gig struct {
	ID        string
	BandID    string
	Title     string
	Venue     string
	Date      time.Time
	StartTime string // "HH:MM" local wall-clock, may be empty
}

// Rehearsal represents a practice session. Recurrence, when set, is an RRULE
// string expanded into individual occurrences by the calendar pipeline.
type Rehearsal struct {
	ID         string
	BandID     string
	Location   string
	Date       time.Time
	StartTime  string
	SetlistID  string
	Recurrence string
}

// BlockOut is one member's declared unavailability for a single day.
// (MemberID, BandID, Date) is unique; the same member may block the same date
// in two different bands, so nothing here may assume global uniqueness.
type BlockOut struct {
	ID       string
	MemberID string
	BandID   string
	Date     time.Time
	Reason   string // may be empty, never null
}

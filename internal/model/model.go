package model

import "time"

// Event is one row of the events table: a named, owner-tagged business event
// covering an inclusive range of calendar days. Events are produced by the
// ingestion side (internal/sheet, internal/ics) and never mutated afterwards.
type Event struct {
	Name string

	// Start / End are naive local dates (midnight, time.Local). End is
	// inclusive, so a one-day event has Start == End.
	Start time.Time
	End   time.Time

	// Owner is the sales owner; may be empty.
	Owner string
}

// Days returns the number of calendar days covered by the event,
// counting both ends. It returns 0 for a malformed event (End before Start).
func (e Event) Days() int {
	if e.End.Before(e.Start) {
		return 0
	}
	return DaysBetween(e.Start, e.End) + 1
}

// Date truncates t to its calendar day in time.Local.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// NewDate builds a naive local date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// DaysBetween returns the whole number of days from a to b (b - a).
// Both values are truncated to dates first so DST shifts do not matter.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

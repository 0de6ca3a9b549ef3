package models

import (
	"strings"
	"time"
)

// BusyInterval is one occupied span from the calendar, both ends UTC.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open interval [start, end) intersects b.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return maxTime(start, b.Start).Before(minTime(end, b.End))
}

// Venue is one row of the externally maintained restaurant directory.
// Row is the 1-based spreadsheet row the entry came from.
type Venue struct {
	Name     string
	VenueID  string
	Platform string
	Row      int
}

// Bound reports whether the venue can be queried on the given platform.
func (v Venue) Bound(platform string) bool {
	return v.VenueID != "" && strings.EqualFold(v.Platform, platform)
}

// Outcome classifies the terminal or per-attempt result of a booking run.
type Outcome string

const (
	OutcomeAlreadyBooked Outcome = "already_booked"
	OutcomeConfirmed     Outcome = "confirmed"
	OutcomeSlotStale     Outcome = "slot_stale"
	OutcomeNoSlots       Outcome = "no_slots"
	OutcomeAttemptError  Outcome = "attempt_error"
	OutcomeExhausted     Outcome = "exhausted"
)

// BookingAttempt records one (evening, venue) attempt. Transient: it lives in
// the run result, the journal and the report, never across runs.
type BookingAttempt struct {
	Evening time.Time
	Venue   Venue
	Slot    Slot
	Outcome Outcome
	Detail  string
	At      time.Time
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

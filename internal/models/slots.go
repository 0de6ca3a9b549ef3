package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot is one platform-reported reservation slot. Start is the raw
// "2006-01-02 15:04:05" string in the venue's local time; Token is the
// platform's time-sensitive config token and must be re-obtained right
// before booking.
type Slot struct {
	Start       string
	SeatingType string
	Token       string
}

// ClockMinutes extracts the slot's local start time as minutes since
// midnight. ok is false when the start string carries no time component.
func (s Slot) ClockMinutes() (int, bool) {
	pieces := strings.Split(s.Start, " ")
	if len(pieces) < 2 {
		return 0, false
	}
	return parseClock(pieces[1])
}

// TimeWindow is an inclusive local-time window, both ends "HH:MM".
type TimeWindow struct {
	Start string
	End   string
}

// Minutes returns the window bounds as minutes since midnight.
func (w TimeWindow) Minutes() (start, end int, err error) {
	start, ok := parseClock(w.Start)
	if !ok {
		return 0, 0, fmt.Errorf("invalid window start %q", w.Start)
	}
	end, ok = parseClock(w.End)
	if !ok {
		return 0, 0, fmt.Errorf("invalid window end %q", w.End)
	}
	return start, end, nil
}

// MatchSlots filters platform-reported slots: a slot qualifies iff it carries
// a non-empty token, its seating type is in seating (or seating is empty) and
// its local start time lies within the window, both ends inclusive. Malformed
// slots are dropped, not errored. Platform order is preserved.
func MatchSlots(slots []Slot, window TimeWindow, seating []string) []Slot {
	winStart, winEnd, err := window.Minutes()
	if err != nil {
		return nil
	}

	var matched []Slot
	for _, s := range slots {
		if s.Token == "" {
			continue
		}
		clock, ok := s.ClockMinutes()
		if !ok {
			continue
		}
		if clock < winStart || clock > winEnd {
			continue
		}
		if len(seating) > 0 && !containsFold(seating, s.SeatingType) {
			continue
		}
		matched = append(matched, s)
	}
	return matched
}

// parseClock parses "HH:MM" or "HH:MM:SS" to minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

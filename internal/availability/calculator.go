// Package availability turns calendar busy intervals and scheduling
// preferences into candidate reservation start times.
package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stolik/internal/models"
)

// GridStep is the spacing between candidate start times within a day.
const GridStep = 15 * time.Minute

// Preferences describes when the user is willing to eat.
type Preferences struct {
	Location      *time.Location
	PreferredDays []string // weekday names, e.g. "Friday"
	StartTime     string   // "HH:MM" local
	EndTime       string   // "HH:MM" local
	Duration      time.Duration
}

// FreeEvenings scans a 15-minute grid over every preferred weekday in
// [now, now+horizonDays) and keeps the grid points whose tentative
// reservation window clears every busy interval. Grid points are local
// instants; the overlap test runs in UTC with half-open semantics. Output is
// chronological. Past grid points are skipped, not terminal for the day.
func FreeEvenings(busy []models.BusyInterval, prefs Preferences, now time.Time, horizonDays int) ([]time.Time, error) {
	if prefs.Location == nil {
		return nil, fmt.Errorf("preferences location is nil")
	}
	nowLocal := now.In(prefs.Location)

	var evenings []time.Time
	for offset := 0; offset < horizonDays; offset++ {
		day := nowLocal.AddDate(0, 0, offset)
		if !preferredDay(prefs.PreferredDays, day.Weekday()) {
			continue
		}

		dayStart, err := clockOnDay(day, prefs.StartTime)
		if err != nil {
			return nil, fmt.Errorf("parse start time: %w", err)
		}
		dayEnd, err := clockOnDay(day, prefs.EndTime)
		if err != nil {
			return nil, fmt.Errorf("parse end time: %w", err)
		}

		for cursor := dayStart; cursor.Before(dayEnd); cursor = cursor.Add(GridStep) {
			if cursor.Before(nowLocal) {
				continue
			}
			windowEnd := cursor.Add(prefs.Duration)
			if isFree(busy, cursor.UTC(), windowEnd.UTC()) {
				evenings = append(evenings, cursor)
			}
		}
	}
	return evenings, nil
}

func isFree(busy []models.BusyInterval, start, end time.Time) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return false
		}
	}
	return true
}

func preferredDay(days []string, weekday time.Weekday) bool {
	name := weekday.String()
	for _, d := range days {
		if d == name {
			return true
		}
	}
	return false
}

// clockOnDay places an "HH:MM" clock string on the given day, keeping the
// day's location.
func clockOnDay(day time.Time, clock string) (time.Time, error) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %s", clock)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour: %w", err)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute: %w", err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

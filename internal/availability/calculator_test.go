package availability

import (
	"testing"
	"time"

	"stolik/internal/models"
)

var testLoc = time.UTC

func testPrefs() Preferences {
	return Preferences{
		Location:      testLoc,
		PreferredDays: []string{"Friday"},
		StartTime:     "18:00",
		EndTime:       "20:00",
		Duration:      2 * time.Hour,
	}
}

func TestFreeEvenings_EmptyCalendar(t *testing.T) {
	// Monday, so the first Friday falls inside the horizon.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, testLoc)

	evenings, err := FreeEvenings(nil, testPrefs(), now, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// [18:00, 20:00) on a 15-minute grid is 8 candidates.
	if len(evenings) != 8 {
		t.Fatalf("Expected 8 candidates, got %d: %v", len(evenings), evenings)
	}
	first := time.Date(2026, 3, 6, 18, 0, 0, 0, testLoc)
	last := time.Date(2026, 3, 6, 19, 45, 0, 0, testLoc)
	if !evenings[0].Equal(first) {
		t.Errorf("Expected first candidate %v, got %v", first, evenings[0])
	}
	if !evenings[len(evenings)-1].Equal(last) {
		t.Errorf("Expected last candidate %v, got %v", last, evenings[len(evenings)-1])
	}
	for i := 1; i < len(evenings); i++ {
		if !evenings[i].After(evenings[i-1]) {
			t.Errorf("Candidates out of order at %d: %v", i, evenings)
		}
	}
}

func TestFreeEvenings_SkipsNonPreferredDays(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, testLoc)

	evenings, err := FreeEvenings(nil, testPrefs(), now, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, e := range evenings {
		if e.Weekday() != time.Friday {
			t.Errorf("Candidate on %v, expected Fridays only", e.Weekday())
		}
	}
}

func TestFreeEvenings_BusyIntervalBlocksOverlappingCandidates(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, testLoc)

	// Busy 19:00-21:00 UTC on the Friday, with a 1h reservation duration.
	busy := []models.BusyInterval{{
		Start: time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 6, 21, 0, 0, 0, time.UTC),
	}}

	prefs := testPrefs()
	prefs.Duration = time.Hour

	evenings, err := FreeEvenings(busy, prefs, now, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Only 18:00 qualifies: its window [18:00, 19:00) touches but does not
	// overlap the busy block. 18:15 onward collide.
	if len(evenings) != 1 {
		t.Fatalf("Expected exactly 1 candidate, got %d: %v", len(evenings), evenings)
	}
	want := time.Date(2026, 3, 6, 18, 0, 0, 0, testLoc)
	if !evenings[0].Equal(want) {
		t.Errorf("Expected %v, got %v", want, evenings[0])
	}

	// Every returned candidate is genuinely disjoint from every busy interval.
	for _, e := range evenings {
		for _, b := range busy {
			if b.Overlaps(e.UTC(), e.Add(prefs.Duration).UTC()) {
				t.Errorf("Candidate %v overlaps busy interval %v", e, b)
			}
		}
	}
}

func TestFreeEvenings_SkipsPastGridPointsOnly(t *testing.T) {
	// It is already 18:40 on the preferred Friday. Earlier grid points are
	// skipped; later ones on the same day still qualify.
	now := time.Date(2026, 3, 6, 18, 40, 0, 0, testLoc)

	evenings, err := FreeEvenings(nil, testPrefs(), now, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []time.Time{
		time.Date(2026, 3, 6, 18, 45, 0, 0, testLoc),
		time.Date(2026, 3, 6, 19, 0, 0, 0, testLoc),
		time.Date(2026, 3, 6, 19, 15, 0, 0, testLoc),
		time.Date(2026, 3, 6, 19, 30, 0, 0, testLoc),
		time.Date(2026, 3, 6, 19, 45, 0, 0, testLoc),
	}
	if len(evenings) != len(want) {
		t.Fatalf("Expected %d candidates, got %d: %v", len(want), len(evenings), evenings)
	}
	for i := range want {
		if !evenings[i].Equal(want[i]) {
			t.Errorf("At index %d: expected %v, got %v", i, want[i], evenings[i])
		}
	}
}

func TestFreeEvenings_StartEqualsEndYieldsNothing(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, testLoc)

	prefs := testPrefs()
	prefs.EndTime = prefs.StartTime

	evenings, err := FreeEvenings(nil, prefs, now, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(evenings) != 0 {
		t.Errorf("Expected no candidates for an empty window, got %v", evenings)
	}
}

func TestFreeEvenings_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, testLoc)
	busy := []models.BusyInterval{{
		Start: time.Date(2026, 3, 6, 18, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC),
	}}

	a, err := FreeEvenings(busy, testPrefs(), now, 14)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := FreeEvenings(busy, testPrefs(), now, 14)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("Runs disagree: %d vs %d candidates", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Errorf("Runs disagree at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFreeEvenings_InvalidInput(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, testLoc)

	prefs := testPrefs()
	prefs.Location = nil
	if _, err := FreeEvenings(nil, prefs, now, 7); err == nil {
		t.Error("Expected error for nil location")
	}

	prefs = testPrefs()
	prefs.StartTime = "evening"
	if _, err := FreeEvenings(nil, prefs, now, 7); err == nil {
		t.Error("Expected error for malformed start time")
	}
}

package directory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"stolik/internal/models"
)

type fakeDirectory struct {
	venues  []models.Venue
	listErr error
	updates []update
}

type update struct {
	row      int
	venueID  string
	platform string
}

func (d *fakeDirectory) ListVenues(_ context.Context, _ string) ([]models.Venue, error) {
	return d.venues, d.listErr
}

func (d *fakeDirectory) UpdateVenue(_ context.Context, _ string, row int, venueID, platform string) error {
	d.updates = append(d.updates, update{row: row, venueID: venueID, platform: platform})
	return nil
}

type fakeSearcher struct {
	results map[string]string
	errs    map[string]error
	queries []string
}

func (s *fakeSearcher) SearchVenue(_ context.Context, name string) (string, error) {
	s.queries = append(s.queries, name)
	if err := s.errs[name]; err != nil {
		return "", err
	}
	return s.results[name], nil
}

func newTestJob(dir *fakeDirectory, searcher *fakeSearcher) *Job {
	logger := zerolog.New(io.Discard)
	job := NewJob(dir, searcher, "sheet-1", &logger)
	job.limiter = rate.NewLimiter(rate.Inf, 1)
	job.sleep = func(context.Context, time.Duration) error { return nil }
	return job
}

func TestJob_ResolvesOnlyUnboundEntries(t *testing.T) {
	dir := &fakeDirectory{venues: []models.Venue{
		{Name: "Resolved", VenueID: "100", Platform: "Resy", Row: 2},
		{Name: "Fresh", Row: 3},
		{Name: "Marked Unknown", Platform: "Unknown", Row: 4},
	}}
	searcher := &fakeSearcher{results: map[string]string{"Fresh": "4321"}}

	require.NoError(t, newTestJob(dir, searcher).Run(context.Background()))

	assert.Equal(t, []string{"Fresh"}, searcher.queries)
	require.Len(t, dir.updates, 1)
	assert.Equal(t, update{row: 3, venueID: "4321", platform: "Resy"}, dir.updates[0])
}

func TestJob_MarksUnmatchedAsUnknown(t *testing.T) {
	dir := &fakeDirectory{venues: []models.Venue{{Name: "Ghost Kitchen", Row: 5}}}
	searcher := &fakeSearcher{}

	require.NoError(t, newTestJob(dir, searcher).Run(context.Background()))

	require.Len(t, dir.updates, 1)
	assert.Equal(t, update{row: 5, venueID: "", platform: "Unknown"}, dir.updates[0])
}

func TestJob_SearchFailureSkipsEntry(t *testing.T) {
	dir := &fakeDirectory{venues: []models.Venue{
		{Name: "Flaky", Row: 2},
		{Name: "Fine", Row: 3},
	}}
	searcher := &fakeSearcher{
		errs:    map[string]error{"Flaky": errors.New("search down")},
		results: map[string]string{"Fine": "8888"},
	}

	require.NoError(t, newTestJob(dir, searcher).Run(context.Background()))

	// Flaky gets no writeback at all; the batch still finishes.
	require.Len(t, dir.updates, 1)
	assert.Equal(t, update{row: 3, venueID: "8888", platform: "Resy"}, dir.updates[0])
}

func TestJob_ListFailureAborts(t *testing.T) {
	dir := &fakeDirectory{listErr: errors.New("sheets down")}
	err := newTestJob(dir, &fakeSearcher{}).Run(context.Background())
	assert.Error(t, err)
}

func TestJob_JitterStaysInRange(t *testing.T) {
	job := newTestJob(&fakeDirectory{}, &fakeSearcher{})
	for i := 0; i < 100; i++ {
		d := job.jitter()
		if d < time.Second || d >= 3*time.Second {
			t.Fatalf("Jitter %v outside [1s, 3s)", d)
		}
	}
}

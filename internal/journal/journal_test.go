package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stolik/internal/models"
)

func TestJournal_RecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "runs.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	finished := started.Add(30 * time.Second)
	attempts := []models.BookingAttempt{
		{
			Evening: time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC),
			Venue:   models.Venue{Name: "Trattoria", VenueID: "4321"},
			Slot:    models.Slot{Start: "2026-03-06 18:15:00"},
			Outcome: models.OutcomeConfirmed,
			At:      started.Add(10 * time.Second),
		},
	}

	err = j.RecordRun(context.Background(), "run-1", models.OutcomeConfirmed, "conf-1", started, finished, attempts)
	require.NoError(t, err)

	var runCount, attemptCount int
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runCount))
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM attempts WHERE run_id = 'run-1'`).Scan(&attemptCount))
	assert.Equal(t, 1, runCount)
	assert.Equal(t, 1, attemptCount)

	var outcome, confirmation string
	require.NoError(t, j.db.QueryRow(`SELECT outcome, confirmation_id FROM runs WHERE id = 'run-1'`).Scan(&outcome, &confirmation))
	assert.Equal(t, "confirmed", outcome)
	assert.Equal(t, "conf-1", confirmation)
}

func TestJournal_DuplicateRunIDFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	now := time.Now().UTC()
	require.NoError(t, j.RecordRun(context.Background(), "run-1", models.OutcomeNoSlots, "", now, now, nil))
	assert.Error(t, j.RecordRun(context.Background(), "run-1", models.OutcomeNoSlots, "", now, now, nil))
}

func TestJournal_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	j, err := Open(path)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, j.RecordRun(context.Background(), "run-1", models.OutcomeExhausted, "", now, now, nil))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	var count int
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count))
	assert.Equal(t, 1, count)
}

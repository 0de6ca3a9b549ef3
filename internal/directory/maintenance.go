// Package directory backfills missing venue identifiers in the restaurant
// directory. It runs off the booking hot path.
package directory

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"stolik/internal/metrics"
	"stolik/internal/models"
)

type Directory interface {
	ListVenues(ctx context.Context, spreadsheetID string) ([]models.Venue, error)
	UpdateVenue(ctx context.Context, spreadsheetID string, row int, venueID, platform string) error
}

type VenueSearcher interface {
	SearchVenue(ctx context.Context, name string) (string, error)
}

// Job fills in venueID/platform for directory entries that have neither.
// Lookups are paced: a rate limiter plus a 1-3s random delay between entries,
// to stay polite toward the search endpoint.
type Job struct {
	directory Directory
	searcher  VenueSearcher
	sheetID   string
	limiter   *rate.Limiter
	logger    *zerolog.Logger

	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

func NewJob(dir Directory, searcher VenueSearcher, sheetID string, logger *zerolog.Logger) *Job {
	return &Job{
		directory: dir,
		searcher:  searcher,
		sheetID:   sheetID,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:     sleepCtx,
	}
}

// Run processes every unresolved entry. Failures on one entry are logged and
// do not abort the batch; Run only errors when the directory itself cannot be
// listed or the context ends.
func (j *Job) Run(ctx context.Context) error {
	venues, err := j.directory.ListVenues(ctx, j.sheetID)
	if err != nil {
		return err
	}

	for _, v := range venues {
		if v.VenueID != "" || v.Platform != "" {
			continue
		}

		if err := j.limiter.Wait(ctx); err != nil {
			return err
		}

		j.logger.Info().Str("venue", v.Name).Msg("searching for venue id")
		venueID, err := j.searcher.SearchVenue(ctx, v.Name)
		if err != nil {
			j.logger.Error().Err(err).Str("venue", v.Name).Msg("venue search failed")
			metrics.IncVenueLookup("error")
			continue
		}

		if venueID != "" {
			metrics.IncVenueLookup("found")
			if err := j.directory.UpdateVenue(ctx, j.sheetID, v.Row, venueID, "Resy"); err != nil {
				j.logger.Error().Err(err).Str("venue", v.Name).Msg("directory writeback failed")
			}
		} else {
			j.logger.Warn().Str("venue", v.Name).Msg("no venue id found, marking unknown")
			metrics.IncVenueLookup("not_found")
			if err := j.directory.UpdateVenue(ctx, j.sheetID, v.Row, "", "Unknown"); err != nil {
				j.logger.Error().Err(err).Str("venue", v.Name).Msg("directory writeback failed")
			}
		}

		if err := j.sleep(ctx, j.jitter()); err != nil {
			return err
		}
	}
	return nil
}

// jitter returns a random delay between one and three seconds.
func (j *Job) jitter() time.Duration {
	return time.Second + time.Duration(j.rng.Int63n(int64(2*time.Second)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package agent drives one end-to-end reservation run: check for an existing
// reservation, walk the shuffled (evening, venue) candidates, re-verify slot
// freshness and book at most once.
package agent

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stolik/internal/availability"
	"stolik/internal/config"
	"stolik/internal/metrics"
	"stolik/internal/models"
	"stolik/internal/notify"
)

// platformName is the only reservation platform the agent can book on.
// Directory entries bound to anything else are skipped.
const platformName = "Resy"

// RunResult is the outcome of one RunOnce call.
type RunResult struct {
	ID             string
	Outcome        models.Outcome
	ConfirmationID string
	EventLink      string
	Attempts       []models.BookingAttempt
	StartedAt      time.Time
	FinishedAt     time.Time
}

type Agent struct {
	cfg       *config.Config
	calendar  CalendarAPI
	directory DirectoryAPI
	platform  ReservationPlatform
	notifier  notify.Notifier
	logger    *zerolog.Logger

	// Test hooks.
	now func() time.Time
	rng *rand.Rand
}

func New(cfg *config.Config, cal CalendarAPI, dir DirectoryAPI, platform ReservationPlatform, notifier notify.Notifier, logger *zerolog.Logger) *Agent {
	return &Agent{
		cfg:       cfg,
		calendar:  cal,
		directory: dir,
		platform:  platform,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// RunOnce performs a single booking pass. It returns an error only for
// failures that abort the run before the candidate loop; everything inside
// the loop is folded into per-attempt outcomes so one bad venue can never
// kill the search.
func (a *Agent) RunOnce(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		ID:        uuid.NewString(),
		StartedAt: a.now(),
	}
	logger := a.logger.With().Str("run_id", result.ID).Logger()
	logger.Info().Msg("reservation run started")

	// Hard precondition: never book on top of an existing reservation.
	reservations, err := a.platform.ActiveReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("check active reservations: %w", err)
	}
	if len(reservations) > 0 {
		logger.Info().Int("count", len(reservations)).Msg("existing reservation found, not booking")
		a.notifier.Notify(ctx, "Reservation agent: found existing reservation",
			fmt.Sprintf("Found %d active reservation(s); not booking a new one.", len(reservations)))
		return a.finish(result, models.OutcomeAlreadyBooked, &logger), nil
	}

	now := a.now()
	horizon := a.cfg.User.HorizonDays

	busy, err := a.calendar.BusyIntervals(ctx, a.cfg.Google.CalendarIDs, now, now.AddDate(0, 0, horizon))
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	prefs := availability.Preferences{
		Location:      a.cfg.Location(),
		PreferredDays: a.cfg.User.PreferredDays,
		StartTime:     a.cfg.User.PreferredStartTime,
		EndTime:       a.cfg.User.PreferredEndTime,
		Duration:      a.cfg.ReservationDuration(),
	}
	evenings, err := availability.FreeEvenings(busy, prefs, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("compute free evenings: %w", err)
	}
	if len(evenings) == 0 {
		logger.Info().Msg("no free evenings match preferences")
		return a.finish(result, models.OutcomeNoSlots, &logger), nil
	}

	venues, err := a.directory.ListVenues(ctx, a.cfg.Google.SheetID)
	if err != nil {
		return nil, fmt.Errorf("read venue directory: %w", err)
	}
	if len(venues) == 0 {
		logger.Info().Msg("venue directory is empty")
		return a.finish(result, models.OutcomeNoSlots, &logger), nil
	}

	pairs := availability.PairAndShuffle(evenings, venues, a.rng)
	logger.Info().
		Int("evenings", len(evenings)).
		Int("venues", len(venues)).
		Int("pairs", len(pairs)).
		Msg("searching for a reservation")

	for _, pair := range pairs {
		if !pair.Venue.Bound(platformName) {
			continue
		}

		res := a.attempt(ctx, &logger, pair)
		result.Attempts = append(result.Attempts, models.BookingAttempt{
			Evening: pair.Evening,
			Venue:   pair.Venue,
			Slot:    res.slot,
			Outcome: res.outcome,
			Detail:  res.detail,
			At:      a.now(),
		})
		metrics.IncAttempt(string(res.outcome))

		switch res.outcome {
		case models.OutcomeConfirmed:
			result.ConfirmationID = res.confirmationID
			result.EventLink = res.eventLink
			a.notifier.Notify(ctx,
				fmt.Sprintf("Reservation confirmed: %s on %s", pair.Venue.Name, formatEvening(pair.Evening)),
				fmt.Sprintf("Your reservation for %d at %s on %s is booked.\n\nConfirmation ID: %s\nCalendar event: %s",
					a.cfg.User.PartySize, pair.Venue.Name, formatEvening(pair.Evening), res.confirmationID, res.eventLink))
			return a.finish(result, models.OutcomeConfirmed, &logger), nil

		case models.OutcomeSlotStale:
			a.notifier.Notify(ctx,
				fmt.Sprintf("Reservation failed (slot stale): %s on %s", pair.Venue.Name, formatEvening(pair.Evening)),
				fmt.Sprintf("A matching slot at %s on %s was gone or rejected by the time booking was attempted. Trying the next option.\n\n%s",
					pair.Venue.Name, formatEvening(pair.Evening), res.detail))

		case models.OutcomeAttemptError:
			logger.Error().
				Str("venue", pair.Venue.Name).
				Str("detail", res.detail).
				Msg("attempt failed")
			a.notifier.Notify(ctx,
				fmt.Sprintf("Reservation agent error: %s on %s", pair.Venue.Name, formatEvening(pair.Evening)),
				fmt.Sprintf("An error occurred while trying to find or book a reservation at %s on %s: %s",
					pair.Venue.Name, formatEvening(pair.Evening), res.detail))
		}
	}

	logger.Info().Msg("all candidates exhausted, nothing booked")
	a.notifier.Notify(ctx, "Reservation agent: nothing booked",
		"The agent ran, but no reservation matching your preferences could be booked.")
	return a.finish(result, models.OutcomeExhausted, &logger), nil
}

type attemptResult struct {
	outcome        models.Outcome
	slot           models.Slot
	confirmationID string
	eventLink      string
	detail         string
}

// attempt tries one (evening, venue) pair. Only the temporally-last matching
// slot is ever booked; earlier matches are not used as fallback within the
// same pair, and the config token from the first query is never trusted for
// booking — a fresh one is re-obtained immediately before the submit.
func (a *Agent) attempt(ctx context.Context, logger *zerolog.Logger, pair availability.Candidate) attemptResult {
	day := pair.Evening.Format("2006-01-02")
	window := models.TimeWindow{Start: a.cfg.User.PreferredStartTime, End: a.cfg.User.PreferredEndTime}
	seating := a.cfg.User.PreferredSeating

	logger.Debug().Str("venue", pair.Venue.Name).Str("day", day).Msg("checking availability")

	slots, err := a.platform.FindSlots(ctx, pair.Venue.VenueID, a.cfg.User.PartySize, day)
	if err != nil {
		return attemptResult{outcome: models.OutcomeAttemptError, detail: err.Error()}
	}
	matches := models.MatchSlots(slots, window, seating)
	if len(matches) == 0 {
		return attemptResult{outcome: models.OutcomeNoSlots}
	}
	logger.Info().
		Str("venue", pair.Venue.Name).
		Str("day", day).
		Int("matches", len(matches)).
		Msg("found matching slots")

	// Re-query so the booking uses a fresh config token: the one from the
	// first query may have rotated or expired.
	slots, err = a.platform.FindSlots(ctx, pair.Venue.VenueID, a.cfg.User.PartySize, day)
	if err != nil {
		return attemptResult{outcome: models.OutcomeAttemptError, detail: err.Error()}
	}
	matches = models.MatchSlots(slots, window, seating)
	if len(matches) == 0 {
		return attemptResult{outcome: models.OutcomeSlotStale, detail: "matching slots disappeared before booking"}
	}

	chosen := matches[len(matches)-1]

	bookToken, err := a.platform.BookingToken(ctx, chosen.Token, day, a.cfg.User.PartySize)
	if err != nil {
		return attemptResult{outcome: models.OutcomeSlotStale, slot: chosen, detail: err.Error()}
	}

	confirmationID, err := a.platform.SubmitBooking(ctx, bookToken)
	if err != nil {
		return attemptResult{outcome: models.OutcomeSlotStale, slot: chosen, detail: err.Error()}
	}
	if confirmationID == "" {
		return attemptResult{outcome: models.OutcomeSlotStale, slot: chosen, detail: "platform returned no confirmation id"}
	}

	logger.Info().
		Str("venue", pair.Venue.Name).
		Str("confirmation_id", confirmationID).
		Msg("booking confirmed")

	link := a.createEvent(ctx, logger, pair, chosen)
	return attemptResult{
		outcome:        models.OutcomeConfirmed,
		slot:           chosen,
		confirmationID: confirmationID,
		eventLink:      link,
	}
}

// createEvent places the calendar event at the actual booked slot time, which
// may differ from the candidate grid time. The booking already succeeded, so
// a calendar failure is logged and does not change the outcome.
func (a *Agent) createEvent(ctx context.Context, logger *zerolog.Logger, pair availability.Candidate, slot models.Slot) string {
	start := pair.Evening
	if clock, ok := slot.ClockMinutes(); ok {
		e := pair.Evening
		start = time.Date(e.Year(), e.Month(), e.Day(), clock/60, clock%60, 0, 0, e.Location())
	}
	end := start.Add(a.cfg.ReservationDuration())

	link, err := a.calendar.CreateEvent(ctx, a.cfg.Google.EventCalendarID, start, end,
		fmt.Sprintf("Dinner at %s", pair.Venue.Name),
		pair.Venue.Name,
		fmt.Sprintf("Reservation for %d.", a.cfg.User.PartySize))
	if err != nil {
		logger.Error().Err(err).Str("venue", pair.Venue.Name).Msg("booking confirmed but calendar event failed")
		return ""
	}
	return link
}

func (a *Agent) finish(result *RunResult, outcome models.Outcome, logger *zerolog.Logger) *RunResult {
	result.Outcome = outcome
	result.FinishedAt = a.now()
	metrics.IncRun(string(outcome))
	logger.Info().Str("outcome", string(outcome)).Int("attempts", len(result.Attempts)).Msg("reservation run finished")
	return result
}

func formatEvening(t time.Time) string {
	return t.Format("Monday, January 2 at 3:04 PM MST")
}

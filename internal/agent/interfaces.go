package agent

import (
	"context"
	"encoding/json"
	"time"

	"stolik/internal/models"
)

type CalendarAPI interface {
	BusyIntervals(ctx context.Context, calendarIDs []string, from, to time.Time) ([]models.BusyInterval, error)
	CreateEvent(ctx context.Context, calendarID string, start, end time.Time, summary, location, description string) (string, error)
}

type DirectoryAPI interface {
	ListVenues(ctx context.Context, spreadsheetID string) ([]models.Venue, error)
}

type ReservationPlatform interface {
	ActiveReservations(ctx context.Context) ([]json.RawMessage, error)
	FindSlots(ctx context.Context, venueID string, partySize int, day string) ([]models.Slot, error)
	BookingToken(ctx context.Context, configToken, day string, partySize int) (string, error)
	SubmitBooking(ctx context.Context, bookToken string) (string, error)
}

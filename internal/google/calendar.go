package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"stolik/internal/models"
)

// CalendarService queries busy time and creates reservation events.
type CalendarService struct {
	svc    *calendar.Service
	logger *zerolog.Logger
}

func NewCalendarService(ctx context.Context, client *http.Client, logger *zerolog.Logger) (*CalendarService, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &CalendarService{svc: svc, logger: logger}, nil
}

// BusyIntervals runs a freebusy query across the given calendars and returns
// the merged busy list in UTC.
func (s *CalendarService) BusyIntervals(ctx context.Context, calendarIDs []string, from, to time.Time) ([]models.BusyInterval, error) {
	items := make([]*calendar.FreeBusyRequestItem, 0, len(calendarIDs))
	for _, id := range calendarIDs {
		items = append(items, &calendar.FreeBusyRequestItem{Id: id})
	}

	req := &calendar.FreeBusyRequest{
		TimeMin: from.UTC().Format(time.RFC3339),
		TimeMax: to.UTC().Format(time.RFC3339),
		Items:   items,
	}

	res, err := s.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	var busy []models.BusyInterval
	for _, id := range calendarIDs {
		cal, ok := res.Calendars[id]
		if !ok {
			continue
		}
		for _, period := range cal.Busy {
			start, err := time.Parse(time.RFC3339, period.Start)
			if err != nil {
				s.logger.Warn().Str("calendar", id).Str("start", period.Start).Msg("skipping unparsable busy period")
				continue
			}
			end, err := time.Parse(time.RFC3339, period.End)
			if err != nil {
				s.logger.Warn().Str("calendar", id).Str("end", period.End).Msg("skipping unparsable busy period")
				continue
			}
			busy = append(busy, models.BusyInterval{Start: start.UTC(), End: end.UTC()})
		}
	}
	return busy, nil
}

// CreateEvent inserts an event and returns its html link.
func (s *CalendarService) CreateEvent(ctx context.Context, calendarID string, start, end time.Time, summary, location, description string) (string, error) {
	event := &calendar.Event{
		Summary:     summary,
		Location:    location,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: start.Location().String()},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: end.Location().String()},
	}

	created, err := s.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}

	s.logger.Info().Str("link", created.HtmlLink).Msg("calendar event created")
	return created.HtmlLink, nil
}

package google

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"stolik/internal/models"
)

// directoryRange covers name, venue ID and platform columns.
const directoryRange = "A:C"

// SheetsService reads and maintains the restaurant directory spreadsheet.
type SheetsService struct {
	svc    *sheets.Service
	logger *zerolog.Logger
}

func NewSheetsService(ctx context.Context, client *http.Client, logger *zerolog.Logger) (*SheetsService, error) {
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsService{svc: svc, logger: logger}, nil
}

// ListVenues reads the directory. The first row is a header; Row on each
// venue is the 1-based spreadsheet row for later writeback.
func (s *SheetsService) ListVenues(ctx context.Context, spreadsheetID string) ([]models.Venue, error) {
	res, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, directoryRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	if len(res.Values) < 2 {
		return nil, nil
	}

	var venues []models.Venue
	for i, row := range res.Values[1:] {
		if len(row) == 0 {
			continue
		}
		v := models.Venue{
			Name: cellString(row, 0),
			Row:  i + 2, // 1-based, plus header
		}
		if v.Name == "" {
			continue
		}
		v.VenueID = cellString(row, 1)
		v.Platform = cellString(row, 2)
		venues = append(venues, v)
	}
	return venues, nil
}

// UpdateVenue writes venueID and platform back into columns B:C of the row.
func (s *SheetsService) UpdateVenue(ctx context.Context, spreadsheetID string, row int, venueID, platform string) error {
	body := &sheets.ValueRange{
		Values: [][]interface{}{{venueID, platform}},
	}
	rng := fmt.Sprintf("B%d:C%d", row, row)
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update directory row %d: %w", row, err)
	}

	s.logger.Info().Int("row", row).Str("venue_id", venueID).Str("platform", platform).Msg("directory row updated")
	return nil
}

func cellString(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

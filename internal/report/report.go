// Package report exports a run's attempt trail to an xlsx workbook.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"stolik/internal/models"
)

var columns = []string{"Evening", "Venue", "Venue ID", "Slot", "Seating", "Outcome", "Detail", "At"}

// WriteRun writes one workbook per run under dir and returns its path.
func WriteRun(dir, runID string, outcome models.Outcome, attempts []models.BookingAttempt) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	runSheet := "Run"
	f.SetSheetName("Sheet1", runSheet)
	_ = f.SetCellValue(runSheet, "A1", "Run ID")
	_ = f.SetCellValue(runSheet, "B1", runID)
	_ = f.SetCellValue(runSheet, "A2", "Outcome")
	_ = f.SetCellValue(runSheet, "B2", string(outcome))
	_ = f.SetCellValue(runSheet, "A3", "Attempts")
	_ = f.SetCellValue(runSheet, "B3", len(attempts))

	sheet := "Attempts"
	if _, err := f.NewSheet(sheet); err != nil {
		return "", err
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return "", err
		}
	}

	// Bold header row.
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheet, start, end, style)
	}

	for i, a := range attempts {
		values := []interface{}{
			a.Evening.Format("2006-01-02 15:04"),
			a.Venue.Name,
			a.Venue.VenueID,
			a.Slot.Start,
			a.Slot.SeatingType,
			string(a.Outcome),
			a.Detail,
			a.At.Format(time.RFC3339),
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return "", err
			}
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("run-%s-%s.xlsx", time.Now().Format("20060102-150405"), shortID(runID)))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

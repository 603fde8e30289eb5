// Package export writes reservation spreadsheets for the /export slash
// command.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hostsync/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ReservationLister supplies the rows to export.
type ReservationLister interface {
	List(ctx context.Context) ([]*models.Reservation, error)
}

type Exporter struct {
	store  ReservationLister
	dir    string
	logger zerolog.Logger
}

func New(store ReservationLister, dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		dir:    dir,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

var header = []string{
	"ID", "Listing", "Channel", "Source", "Status",
	"Guest Name", "Arrival Date", "Departure Date", "Updated At",
}

// ExportReservations writes every local reservation to a timestamped xlsx
// file and returns its path.
func (e *Exporter) ExportReservations(ctx context.Context) (string, error) {
	reservations, err := e.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list reservations: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return "", err
		}
	}

	for i, r := range reservations {
		row := []any{
			r.ID, r.ListingMapID, r.ChannelID,
			stringOrEmpty(r.Source), stringOrEmpty(r.Status), stringOrEmpty(r.GuestName),
			stringOrEmpty(r.ArrivalDate), stringOrEmpty(r.DepartureDate),
			r.UpdatedAt.Format(time.RFC3339),
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return "", err
			}
		}
	}

	path := filepath.Join(e.dir, fmt.Sprintf("reservations_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := file.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}

	e.logger.Info().Str("path", path).Int("rows", len(reservations)).Msg("Reservations exported")
	return path, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

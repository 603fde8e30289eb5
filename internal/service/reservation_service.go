// Package service implements the idempotent persistence rules: unknown
// fields are filtered out, duplicate creates are warnings, and every update
// writes a pre-update revision snapshot in the same transaction.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hostsync/internal/database"
	"hostsync/internal/metrics"
	"hostsync/internal/models"
	"hostsync/internal/notify"
	"hostsync/internal/schema"

	"github.com/rs/zerolog"
)

type ReservationService struct {
	db       *database.DB
	notifier notify.Notifier
	logger   zerolog.Logger
}

func NewReservationService(db *database.DB, notifier notify.Notifier, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		db:       db,
		notifier: notifier,
		logger:   logger.With().Str("component", "reservation_service").Logger(),
	}
}

// Create persists a new reservation from a webhook field map. A duplicate ID
// is an idempotent no-op reported as a warning. announce suppresses the
// success notification for sync side-effects.
func (s *ReservationService) Create(ctx context.Context, fields map[string]any, announce bool) error {
	descriptor, _ := schema.ForKind(models.KindReservation)
	reservation := models.NewReservationFromFields(descriptor.Filter(fields))

	err := s.db.CreateReservation(ctx, reservation)
	if errors.Is(err, database.ErrDuplicate) {
		metrics.IncDuplicate(models.KindReservation)
		s.notifier.Warn(ctx, fmt.Sprintf("Duplicate reservation creation for reservation ID: %d", reservation.ID))
		return nil
	}
	if err != nil {
		return err
	}

	if announce {
		s.notifier.Inform(ctx, fmt.Sprintf("Reservation created with ID: %d", reservation.ID))
	}
	return nil
}

// Update snapshots the current record state into a revision row and applies
// the incoming fields, both in one transaction. Returns
// database.ErrNotFound when the reservation does not exist locally; the
// caller decides whether that is fatal.
func (s *ReservationService) Update(ctx context.Context, fields map[string]any, announce bool) error {
	descriptor, _ := schema.ForKind(models.KindReservation)
	filtered := descriptor.Filter(fields)

	id, ok := fieldID(filtered)
	if !ok {
		return errors.New("reservation update without id")
	}

	reservation, err := s.db.GetReservation(ctx, id)
	if err != nil {
		return err
	}

	revision, err := json.Marshal(reservation.FieldMap())
	if err != nil {
		return fmt.Errorf("failed to serialize reservation revision: %w", err)
	}

	reservation.ApplyFields(filtered)
	if err := s.db.UpdateReservation(ctx, reservation, revision); err != nil {
		return err
	}

	if announce {
		s.notifier.Inform(ctx, fmt.Sprintf("Reservation %d updated", id))
	}
	return nil
}

// Exists reports whether a reservation is present locally.
func (s *ReservationService) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.db.GetReservation(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the local reservation record.
func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.db.GetReservation(ctx, id)
}

// List returns every local reservation.
func (s *ReservationService) List(ctx context.Context) ([]*models.Reservation, error) {
	return s.db.ListReservations(ctx)
}

func fieldID(fields map[string]any) (int64, bool) {
	switch n := fields["id"].(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

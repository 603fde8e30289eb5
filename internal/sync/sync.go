// Package sync reconciles the local reservation store against the Hostaway
// API: missing reservations are ingested, drifted ones are reported and
// updated from the upstream copy.
package sync

import (
	"context"
	"fmt"
	"strings"

	"hostsync/internal/hostaway"
	"hostsync/internal/metrics"
	"hostsync/internal/models"
	"hostsync/internal/schema"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReservationLister is the upstream surface the sync needs.
type ReservationLister interface {
	ListReservations(ctx context.Context, filters hostaway.ReservationFilters) ([]map[string]any, error)
}

// Notifier is the notification surface the sync needs: leveled outcome
// reporting plus direct channel posts, so discrepancy reports reach operators
// verbatim instead of as a see-the-logs pointer.
type Notifier interface {
	Inform(ctx context.Context, message string)
	Warn(ctx context.Context, message string)
	Error(ctx context.Context, message string)
	MessageChannel(ctx context.Context, channelID, text string) error
}

// ReservationStore is the local surface the sync needs.
type ReservationStore interface {
	List(ctx context.Context) ([]*models.Reservation, error)
	Create(ctx context.Context, fields map[string]any, announce bool) error
	Update(ctx context.Context, fields map[string]any, announce bool) error
}

// Service runs one reconciliation pass per Run call.
type Service struct {
	upstream ReservationLister
	store    ReservationStore
	notifier Notifier
	logger   zerolog.Logger
}

func New(upstream ReservationLister, store ReservationStore, notifier Notifier, logger *zerolog.Logger) *Service {
	return &Service{
		upstream: upstream,
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "sync").Logger(),
	}
}

// Run fetches every upstream reservation and brings the local store in line.
// A failed upstream listing aborts the run; per-reservation failures are
// logged and skipped so one bad record never stops the pass.
func (s *Service) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Logger()

	logger.Info().Msg("Reservation sync started")
	s.notifier.Inform(ctx, "Syncing reservations with Hostaway...")

	upstream, err := s.upstream.ListReservations(ctx, hostaway.ReservationFilters{})
	if err != nil {
		metrics.IncSyncRun("failure")
		logger.Error().Err(err).Msg("Failed to list upstream reservations")
		s.notifier.Error(ctx, "Failed to retrieve all reservations from Hostaway API.")
		return err
	}

	local, err := s.store.List(ctx)
	if err != nil {
		metrics.IncSyncRun("failure")
		logger.Error().Err(err).Msg("Failed to list local reservations")
		return err
	}

	localByID := make(map[int64]*models.Reservation, len(local))
	for _, r := range local {
		localByID[r.ID] = r
	}

	descriptor, _ := schema.ForKind(models.KindReservation)

	var ingested, updated int
	for _, fields := range upstream {
		id, ok := reservationID(fields)
		if !ok {
			logger.Warn().Msg("Upstream reservation without a usable id, skipping")
			continue
		}

		record, exists := localByID[id]
		if !exists {
			if err := descriptor.Validate(fields); err != nil {
				logger.Warn().Err(err).Int64("reservation_id", id).Msg("Invalid upstream reservation, skipping")
				continue
			}
			if err := s.store.Create(ctx, fields, false); err != nil {
				logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to ingest missing reservation")
				continue
			}
			metrics.IncSyncRepair("ingest")
			ingested++
			continue
		}

		discrepancies := diff(descriptor, record.FieldMap(), fields)
		if len(discrepancies) == 0 {
			continue
		}

		report := fmt.Sprintf("Discrepancies found for reservation ID %d:\n%s",
			id, strings.Join(discrepancies, "\n"))
		logger.Warn().Int64("reservation_id", id).Msg(report)
		// The field list goes to the channel verbatim.
		if err := s.notifier.MessageChannel(ctx, "", report); err != nil {
			logger.Error().Err(err).Msg("Failed to post discrepancy report")
		}

		if err := s.store.Update(ctx, fields, false); err != nil {
			logger.Error().Err(err).Int64("reservation_id", id).Msg("Failed to update drifted reservation")
			continue
		}
		metrics.IncSyncRepair("update")
		updated++
	}

	metrics.IncSyncRun("success")

	summary := fmt.Sprintf("Synced %d reservations with Hostaway.", len(upstream))
	if ingested > 0 {
		summary += fmt.Sprintf(" Ingested %d missing reservations.", ingested)
	}
	if updated > 0 {
		summary += fmt.Sprintf(" Updated %d outdated reservations.", updated)
	}
	s.notifier.Inform(ctx, summary)

	logger.Info().
		Int("total", len(upstream)).
		Int("ingested", ingested).
		Int("updated", updated).
		Msg("Reservation sync finished")
	return nil
}

// diff compares the local and upstream field maps over the reconcilable
// columns. Values are compared as normalized strings so int64/float64 and
// nil/"" encoding differences do not read as drift.
func diff(descriptor *schema.Descriptor, local, upstream map[string]any) []string {
	var discrepancies []string
	for _, name := range descriptor.DiffFields() {
		localValue := normalize(local[name])
		upstreamValue := normalize(upstream[name])
		if localValue != upstreamValue {
			discrepancies = append(discrepancies,
				fmt.Sprintf("%s: Local(%v) vs Upstream(%v)", name, localValue, upstreamValue))
		}
	}
	return discrepancies
}

func normalize(v any) string {
	if v == nil {
		return ""
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprint(int64(f))
	}
	return fmt.Sprint(v)
}

func reservationID(fields map[string]any) (int64, bool) {
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

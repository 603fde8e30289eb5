// Package dispatch routes validated webhook events to the persistence
// services and resolves missing reservation parents by fetching them from
// the upstream API before any foreign-key-bearing write.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"hostsync/internal/database"
	"hostsync/internal/models"
	"hostsync/internal/notify"
	"hostsync/internal/service"
	"hostsync/internal/validator"

	"github.com/rs/zerolog"
)

// UpstreamClient is the slice of the Hostaway client the dispatcher needs
// for parent auto-healing.
type UpstreamClient interface {
	GetReservation(ctx context.Context, reservationID int64) (map[string]any, error)
}

type Dispatcher struct {
	tasks        *service.TaskService
	reservations *service.ReservationService
	messages     *service.MessageService
	upstream     UpstreamClient
	notifier     notify.Notifier
	logger       zerolog.Logger
}

func New(
	tasks *service.TaskService,
	reservations *service.ReservationService,
	messages *service.MessageService,
	upstream UpstreamClient,
	notifier notify.Notifier,
	logger *zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		tasks:        tasks,
		reservations: reservations,
		messages:     messages,
		upstream:     upstream,
		notifier:     notifier,
		logger:       logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch handles a validated event. It is invoked only on validator
// success.
func (d *Dispatcher) Dispatch(ctx context.Context, event *validator.Event) error {
	switch event.Object {
	case models.KindTask:
		return d.dispatchTask(ctx, event)
	case models.KindReservation:
		return d.dispatchReservation(ctx, event)
	case models.KindConversationMessage:
		return d.dispatchMessage(ctx, event)
	default:
		return fmt.Errorf("unknown object type: %s", event.Object)
	}
}

func (d *Dispatcher) dispatchTask(ctx context.Context, event *validator.Event) error {
	switch event.EventType {
	case models.EventTaskCreated:
		return d.tasks.Create(ctx, event.Data, true)
	case models.EventTaskUpdated:
		err := d.tasks.Update(ctx, event.Data, true)
		if errors.Is(err, database.ErrNotFound) {
			// Tasks have no fetch-by-id recovery path; this is not healed.
			d.notifier.Error(ctx, fmt.Sprintf("Task update received for non-existent task ID: %d", event.ID))
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown task event: %s", event.EventType)
	}
}

func (d *Dispatcher) dispatchReservation(ctx context.Context, event *validator.Event) error {
	switch event.EventType {
	case models.EventReservationCreated:
		return d.reservations.Create(ctx, event.Data, true)
	case models.EventReservationUpdated:
		d.ensureReservation(ctx, event.ID)
		err := d.reservations.Update(ctx, event.Data, true)
		if errors.Is(err, database.ErrNotFound) {
			d.notifier.Error(ctx, fmt.Sprintf("Reservation update received for non-existent reservation ID: %d", event.ID))
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown reservation event: %s", event.EventType)
	}
}

func (d *Dispatcher) dispatchMessage(ctx context.Context, event *validator.Event) error {
	if reservationID, ok := int64Field(event.Data, "reservationId"); ok {
		d.ensureReservation(ctx, reservationID)
	}
	return d.messages.Create(ctx, event.Data)
}

// ensureReservation makes sure the referenced reservation exists locally,
// fetching and ingesting it from the upstream API when missing. A failed
// fetch is logged and processing proceeds without the parent; the dangling
// reference is a known gap that reconciliation repairs later.
func (d *Dispatcher) ensureReservation(ctx context.Context, reservationID int64) {
	exists, err := d.reservations.Exists(ctx, reservationID)
	if err != nil {
		d.logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Failed to look up reservation")
		return
	}
	if exists {
		return
	}

	d.logger.Info().Int64("reservation_id", reservationID).Msg("Reservation missing locally, fetching from Hostaway")

	fields, err := d.upstream.GetReservation(ctx, reservationID)
	if err != nil {
		d.logger.Error().Err(err).Int64("reservation_id", reservationID).
			Msg("Failed to fetch missing reservation, proceeding without parent")
		return
	}

	// Sync side-effect: suppress the success notification.
	if err := d.reservations.Create(ctx, fields, false); err != nil {
		d.logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Failed to ingest fetched reservation")
	}
}

func int64Field(data map[string]any, key string) (int64, bool) {
	switch n := data[key].(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

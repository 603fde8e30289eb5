// Package worker runs the queue consumers. Each worker drains its queue
// until close or context cancellation, isolating per-payload failures so a
// bad payload never stops the pipeline.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hostsync/internal/metrics"
	"hostsync/internal/notify"
	"hostsync/internal/queue"
	"hostsync/internal/validator"

	"github.com/rs/zerolog"
)

// EventDispatcher routes a validated event to its persistence service.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *validator.Event) error
}

// WebhookWorker consumes raw webhook payloads, validates them and hands the
// validated events to the dispatcher.
type WebhookWorker struct {
	queue      queue.Queue
	dispatcher EventDispatcher
	notifier   notify.Notifier
	accountID  string
	logger     zerolog.Logger
}

func NewWebhookWorker(
	q queue.Queue,
	dispatcher EventDispatcher,
	notifier notify.Notifier,
	accountID string,
	logger *zerolog.Logger,
) *WebhookWorker {
	return &WebhookWorker{
		queue:      q,
		dispatcher: dispatcher,
		notifier:   notifier,
		accountID:  accountID,
		logger:     logger.With().Str("component", "webhook_worker").Logger(),
	}
}

// Start consumes the webhook queue until it is closed or ctx is cancelled.
func (w *WebhookWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Webhook worker started")
	for {
		payload, err := w.queue.Dequeue(ctx)
		if errors.Is(err, queue.ErrClosed) || errors.Is(err, context.Canceled) {
			w.logger.Info().Msg("Webhook worker stopped")
			return
		}
		if err != nil {
			w.logger.Error().Err(err).Msg("Failed to dequeue webhook payload")
			continue
		}

		w.process(ctx, payload)
	}
}

func (w *WebhookWorker) process(ctx context.Context, payload []byte) {
	// A panicking payload must not take the worker down with it.
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Interface("panic", r).Msg("Recovered from panic while processing webhook")
			w.notifier.Error(ctx, fmt.Sprintf("Failed to process Hostaway webhook payload: %v", r))
		}
	}()

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		w.logger.Error().Err(err).Msg("Failed to decode webhook payload")
		w.notifier.Error(ctx, fmt.Sprintf("Failed to process Hostaway webhook payload: %v", err))
		return
	}

	// Hostaway sends a bare {"data": "test"} payload when a webhook is
	// registered.
	if len(data) == 1 {
		if v, ok := data["data"].(string); ok && v == "test" {
			w.logger.Info().Msg("Test payload received. Ignoring...")
			return
		}
	}

	event, err := validator.ValidateWebhook(data, w.accountID)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Webhook payload rejected")
		w.notifier.Error(ctx, fmt.Sprintf("Failed to process Hostaway webhook payload: %v", err))
		return
	}

	if err := w.dispatcher.Dispatch(ctx, event); err != nil {
		metrics.IncEvent(event.Object, event.EventType, "error")
		w.logger.Error().Err(err).
			Str("object", event.Object).
			Str("event", event.EventType).
			Int64("id", event.ID).
			Msg("Failed to process event")
		w.notifier.Error(ctx, fmt.Sprintf("Failed to process Hostaway webhook payload: %v", err))
		return
	}

	metrics.IncEvent(event.Object, event.EventType, "ok")
	w.logger.Info().
		Str("object", event.Object).
		Str("event", event.EventType).
		Int64("id", event.ID).
		Msg("Event processed")
}

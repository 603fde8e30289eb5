package worker

import (
	"context"
	"encoding/json"
	"errors"

	"hostsync/internal/models"
	"hostsync/internal/queue"

	"github.com/rs/zerolog"
)

// CommandHandler executes a decoded slash command.
type CommandHandler interface {
	Handle(ctx context.Context, request *models.CommandRequest)
}

// CommandWorker consumes queued slash-command requests.
type CommandWorker struct {
	queue   queue.Queue
	handler CommandHandler
	logger  zerolog.Logger
}

func NewCommandWorker(q queue.Queue, handler CommandHandler, logger *zerolog.Logger) *CommandWorker {
	return &CommandWorker{
		queue:   q,
		handler: handler,
		logger:  logger.With().Str("component", "command_worker").Logger(),
	}
}

// Start consumes the command queue until it is closed or ctx is cancelled.
func (w *CommandWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Command worker started")
	for {
		payload, err := w.queue.Dequeue(ctx)
		if errors.Is(err, queue.ErrClosed) || errors.Is(err, context.Canceled) {
			w.logger.Info().Msg("Command worker stopped")
			return
		}
		if err != nil {
			w.logger.Error().Err(err).Msg("Failed to dequeue command")
			continue
		}

		w.process(ctx, payload)
	}
}

func (w *CommandWorker) process(ctx context.Context, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Interface("panic", r).Msg("Recovered from panic while handling command")
		}
	}()

	var request models.CommandRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		w.logger.Error().Err(err).Msg("Failed to decode command request")
		return
	}

	w.handler.Handle(ctx, &request)
}

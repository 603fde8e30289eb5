// Package command handles Slack slash commands pulled off the command queue.
package command

import (
	"context"
	"fmt"

	"hostsync/internal/models"
	"hostsync/internal/validator"

	"github.com/rs/zerolog"
)

// Messenger posts a reply into a Slack channel.
type Messenger interface {
	MessageChannel(ctx context.Context, channelID, text string) error
}

// Exporter produces the reservation spreadsheet for /export.
type Exporter interface {
	ExportReservations(ctx context.Context) (string, error)
}

type Handler struct {
	messenger Messenger
	exporter  Exporter
	logger    zerolog.Logger
}

func NewHandler(messenger Messenger, exporter Exporter, logger *zerolog.Logger) *Handler {
	return &Handler{
		messenger: messenger,
		exporter:  exporter,
		logger:    logger.With().Str("component", "command").Logger(),
	}
}

// Handle executes one slash command. Replies, including validation errors,
// go back to the channel the command came from.
func (h *Handler) Handle(ctx context.Context, request *models.CommandRequest) {
	channelID := request.Form["channel_id"]

	switch request.Command {
	case "/speak":
		h.speak(ctx, channelID, request.Form)
	case "/export":
		h.export(ctx, channelID)
	default:
		h.logger.Warn().Str("command", request.Command).Msg("Unknown slash command")
		h.reply(ctx, channelID, fmt.Sprintf("Unknown command: %s", request.Command))
	}
}

func (h *Handler) speak(ctx context.Context, channelID string, form map[string]string) {
	text, err := validator.ValidateCommandInput(form)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Invalid /speak input")
		h.reply(ctx, channelID, err.Error())
		return
	}

	h.reply(ctx, channelID, fmt.Sprintf("%q is such a silly thing to say!", text))
}

func (h *Handler) export(ctx context.Context, channelID string) {
	path, err := h.exporter.ExportReservations(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to export reservations")
		h.reply(ctx, channelID, "Failed to export reservations, see service logs for details")
		return
	}

	h.reply(ctx, channelID, fmt.Sprintf("Reservations exported to %s", path))
}

func (h *Handler) reply(ctx context.Context, channelID, text string) {
	if err := h.messenger.MessageChannel(ctx, channelID, text); err != nil {
		h.logger.Error().Err(err).Msg("Failed to reply to slash command")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"hostsync/internal/database"
	"hostsync/internal/metrics"
	"hostsync/internal/models"
	"hostsync/internal/notify"
	"hostsync/internal/schema"

	"github.com/rs/zerolog"
)

type MessageService struct {
	db       *database.DB
	notifier notify.Notifier
	logger   zerolog.Logger
}

func NewMessageService(db *database.DB, notifier notify.Notifier, logger *zerolog.Logger) *MessageService {
	return &MessageService{
		db:       db,
		notifier: notifier,
		logger:   logger.With().Str("component", "message_service").Logger(),
	}
}

// Create persists a conversation message, creating its conversation first
// when the conversation ID is unseen. A duplicate message ID is warned and
// swallowed.
func (s *MessageService) Create(ctx context.Context, fields map[string]any) error {
	descriptor, _ := schema.ForKind(models.KindConversationMessage)
	message := models.NewConversationMessageFromFields(descriptor.Filter(fields))

	if message.ConversationID == 0 {
		return errors.New("conversation message without conversationId")
	}

	if err := s.ensureConversation(ctx, message.ConversationID, message.ReservationID); err != nil {
		return err
	}

	err := s.db.CreateConversationMessage(ctx, message)
	if errors.Is(err, database.ErrDuplicate) {
		metrics.IncDuplicate(models.KindConversationMessage)
		s.notifier.Warn(ctx, fmt.Sprintf("Duplicate conversationMessage received. Duplicated ID: %d", message.ID))
		return nil
	}
	if err != nil {
		return err
	}

	s.notifier.Inform(ctx, fmt.Sprintf("ConversationMessage received with ID: %d", message.ID))
	return nil
}

func (s *MessageService) ensureConversation(ctx context.Context, conversationID int64, reservationID *int64) error {
	_, err := s.db.GetConversation(ctx, conversationID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	conversation := &models.Conversation{ID: conversationID, ReservationID: reservationID}
	err = s.db.CreateConversation(ctx, conversation)
	// A concurrent create is fine; the row exists either way.
	if err != nil && !errors.Is(err, database.ErrDuplicate) {
		return err
	}

	s.logger.Info().Int64("conversation_id", conversationID).Msg("Conversation created")
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hostsync/internal/models"
)

func (db *DB) CreateConversation(ctx context.Context, c *models.Conversation) error {
	query := `INSERT INTO conversations (id, reservation_id, created_at) VALUES (?, ?, ?)`

	now := time.Now()
	_, err := db.db.ExecContext(ctx, query, c.ID, c.ReservationID, now)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("conversation %d: %w", c.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	c.CreatedAt = now
	return nil
}

func (db *DB) GetConversation(ctx context.Context, id int64) (*models.Conversation, error) {
	query := `SELECT id, reservation_id, created_at FROM conversations WHERE id = ?`

	var (
		c             models.Conversation
		reservationID sql.NullInt64
	)
	err := db.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &reservationID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	c.ReservationID = nullableInt64(reservationID)
	return &c, nil
}

func (db *DB) CreateConversationMessage(ctx context.Context, m *models.ConversationMessage) error {
	query := `
        INSERT INTO conversation_messages (id, account_id, reservation_id, conversation_id, body, communication_type, status, is_incoming, date, inserted_on, updated_on)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	now := time.Now()
	_, err := db.db.ExecContext(ctx, query,
		m.ID,
		m.AccountID,
		m.ReservationID,
		m.ConversationID,
		m.Body,
		m.CommunicationType,
		m.Status,
		m.IsIncoming,
		m.Date,
		now,
		now,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("conversation message %d: %w", m.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create conversation message: %w", err)
	}

	m.InsertedOn = now
	m.UpdatedOn = now
	return nil
}

func (db *DB) GetConversationMessage(ctx context.Context, id int64) (*models.ConversationMessage, error) {
	query := `
        SELECT id, account_id, reservation_id, conversation_id, body, communication_type, status, is_incoming, date, inserted_on, updated_on
        FROM conversation_messages WHERE id = ?
    `

	var (
		m             models.ConversationMessage
		reservationID sql.NullInt64
		status        sql.NullString
		isIncoming    sql.NullBool
		date          sql.NullString
	)
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.AccountID,
		&reservationID,
		&m.ConversationID,
		&m.Body,
		&m.CommunicationType,
		&status,
		&isIncoming,
		&date,
		&m.InsertedOn,
		&m.UpdatedOn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation message %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation message: %w", err)
	}

	m.ReservationID = nullableInt64(reservationID)
	m.Status = nullableString(status)
	m.IsIncoming = nullableBool(isIncoming)
	m.Date = nullableString(date)
	return &m, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hostsync/internal/models"
)

func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	query := `
        INSERT INTO tasks (id, listing_map_id, channel_id, reservation_id, auto_task_id, assignee_user_id, title, description, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	now := time.Now()
	_, err := db.db.ExecContext(ctx, query,
		t.ID,
		t.ListingMapID,
		t.ChannelID,
		t.ReservationID,
		t.AutoTaskID,
		t.AssigneeUserID,
		t.Title,
		t.Description,
		t.Status,
		now,
		now,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("task %d: %w", t.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (db *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	query := `
        SELECT id, listing_map_id, channel_id, reservation_id, auto_task_id, assignee_user_id, title, description, status, created_at, updated_at
        FROM tasks WHERE id = ?
    `

	t, err := scanTask(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask writes the pre-update snapshot and the new record state in one
// transaction, mirroring UpdateReservation.
func (db *DB) UpdateTask(ctx context.Context, t *models.Task, revision []byte) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO task_revisions (task_id, revision_data, created_at) VALUES (?, ?, ?)`,
		t.ID, string(revision), now,
	)
	if err != nil {
		return fmt.Errorf("failed to write task revision: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE tasks
         SET listing_map_id = ?, channel_id = ?, reservation_id = ?, auto_task_id = ?, assignee_user_id = ?, title = ?, description = ?, status = ?, updated_at = ?
         WHERE id = ?`,
		t.ListingMapID, t.ChannelID, t.ReservationID, t.AutoTaskID, t.AssigneeUserID, t.Title, t.Description, t.Status, now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("task %d: %w", t.ID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task update: %w", err)
	}

	t.UpdatedAt = now
	return nil
}

func (db *DB) GetTaskRevisions(ctx context.Context, taskID int64) ([]models.Revision, error) {
	return db.getRevisions(ctx,
		`SELECT id, task_id, revision_data, created_at FROM task_revisions WHERE task_id = ? ORDER BY created_at, id`,
		taskID,
	)
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t              models.Task
		listingMapID   sql.NullInt64
		channelID      sql.NullInt64
		reservationID  sql.NullInt64
		autoTaskID     sql.NullInt64
		assigneeUserID sql.NullInt64
		title          sql.NullString
		description    sql.NullString
		status         sql.NullString
	)

	err := row.Scan(
		&t.ID,
		&listingMapID,
		&channelID,
		&reservationID,
		&autoTaskID,
		&assigneeUserID,
		&title,
		&description,
		&status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ListingMapID = nullableInt64(listingMapID)
	t.ChannelID = nullableInt64(channelID)
	t.ReservationID = nullableInt64(reservationID)
	t.AutoTaskID = nullableInt64(autoTaskID)
	t.AssigneeUserID = nullableInt64(assigneeUserID)
	t.Title = nullableString(title)
	t.Description = nullableString(description)
	t.Status = nullableString(status)
	return &t, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hostsync/internal/models"
)

// CreateReservation inserts a reservation; a primary-key collision comes
// back as ErrDuplicate.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	query := `
        INSERT INTO reservations (id, listing_map_id, channel_id, source, status, guest_name, arrival_date, departure_date, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	now := time.Now()
	_, err := db.db.ExecContext(ctx, query,
		r.ID,
		r.ListingMapID,
		r.ChannelID,
		r.Source,
		r.Status,
		r.GuestName,
		r.ArrivalDate,
		r.DepartureDate,
		now,
		now,
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("reservation %d: %w", r.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `
        SELECT id, listing_map_id, channel_id, source, status, guest_name, arrival_date, departure_date, created_at, updated_at
        FROM reservations WHERE id = ?
    `

	r, err := scanReservation(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// UpdateReservation writes the pre-update snapshot and the new record state
// in a single transaction; the two succeed or fail together.
func (db *DB) UpdateReservation(ctx context.Context, r *models.Reservation, revision []byte) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reservation_revisions (reservation_id, revision_data, created_at) VALUES (?, ?, ?)`,
		r.ID, string(revision), now,
	)
	if err != nil {
		return fmt.Errorf("failed to write reservation revision: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE reservations
         SET listing_map_id = ?, channel_id = ?, source = ?, status = ?, guest_name = ?, arrival_date = ?, departure_date = ?, updated_at = ?
         WHERE id = ?`,
		r.ListingMapID, r.ChannelID, r.Source, r.Status, r.GuestName, r.ArrivalDate, r.DepartureDate, now, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("reservation %d: %w", r.ID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation update: %w", err)
	}

	r.UpdatedAt = now
	return nil
}

func (db *DB) ListReservations(ctx context.Context) ([]*models.Reservation, error) {
	query := `
        SELECT id, listing_map_id, channel_id, source, status, guest_name, arrival_date, departure_date, created_at, updated_at
        FROM reservations ORDER BY id
    `

	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (db *DB) GetReservationRevisions(ctx context.Context, reservationID int64) ([]models.Revision, error) {
	return db.getRevisions(ctx,
		`SELECT id, reservation_id, revision_data, created_at FROM reservation_revisions WHERE reservation_id = ? ORDER BY created_at, id`,
		reservationID,
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		r             models.Reservation
		source        sql.NullString
		status        sql.NullString
		guestName     sql.NullString
		arrivalDate   sql.NullString
		departureDate sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&r.ListingMapID,
		&r.ChannelID,
		&source,
		&status,
		&guestName,
		&arrivalDate,
		&departureDate,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Source = nullableString(source)
	r.Status = nullableString(status)
	r.GuestName = nullableString(guestName)
	r.ArrivalDate = nullableString(arrivalDate)
	r.DepartureDate = nullableString(departureDate)
	return &r, nil
}

func (db *DB) getRevisions(ctx context.Context, query string, parentID int64) ([]models.Revision, error) {
	rows, err := db.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get revisions: %w", err)
	}
	defer rows.Close()

	var revisions []models.Revision
	for rows.Next() {
		var rev models.Revision
		if err := rows.Scan(&rev.ID, &rev.ParentID, &rev.Data, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revisions = append(revisions, rev)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return revisions, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullableBool(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	// ErrDuplicate marks a primary-key collision on create. Entity IDs are
	// upstream-assigned, so this is the idempotent-replay signal, not a bug.
	ErrDuplicate = errors.New("duplicate id")
	// ErrNotFound marks a lookup miss; callers decide whether that is fatal.
	ErrNotFound = errors.New("record not found")
)

type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func New(path string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY,
            listing_map_id INTEGER NOT NULL,
            channel_id INTEGER NOT NULL,
            source TEXT,
            status TEXT,
            guest_name TEXT,
            arrival_date TEXT,
            departure_date TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY,
            listing_map_id INTEGER,
            channel_id INTEGER,
            reservation_id INTEGER,
            auto_task_id INTEGER,
            assignee_user_id INTEGER,
            title TEXT,
            description TEXT,
            status TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS conversations (
            id INTEGER PRIMARY KEY,
            reservation_id INTEGER REFERENCES reservations(id),
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS conversation_messages (
            id INTEGER PRIMARY KEY,
            account_id INTEGER NOT NULL,
            reservation_id INTEGER REFERENCES reservations(id),
            conversation_id INTEGER NOT NULL REFERENCES conversations(id),
            body TEXT NOT NULL,
            communication_type TEXT NOT NULL,
            status TEXT,
            is_incoming BOOLEAN,
            date TEXT,
            inserted_on DATETIME NOT NULL,
            updated_on DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS reservation_revisions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            reservation_id INTEGER NOT NULL,
            revision_data TEXT NOT NULL,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS task_revisions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_id INTEGER NOT NULL,
            revision_data TEXT NOT NULL,
            created_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON conversation_messages(conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_reservation_id ON conversation_messages(reservation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservation_revisions_parent ON reservation_revisions(reservation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_task_revisions_parent ON task_revisions(task_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// isDuplicate reports whether err is a sqlite uniqueness violation on the
// primary key or a unique index.
func isDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

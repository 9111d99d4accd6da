// Package store provides storage backends for the processed-message record.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements SeenRepo.
var _ SeenRepo = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure the seen_messages table exists
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListSeen() ([]SeenRecord, error) {
	rows, err := s.db.Query(`SELECT position, message_id, seen_at FROM seen_messages ORDER BY position ASC`)
	if err != nil {
		slog.Error("SQLiteStore ListSeen query failed", "error", err)
		return nil, fmt.Errorf("failed to query seen messages: %w", err)
	}
	defer rows.Close()

	var records []SeenRecord
	for rows.Next() {
		var r SeenRecord
		if err := rows.Scan(&r.Position, &r.MessageID, &r.SeenAt); err != nil {
			return nil, fmt.Errorf("scan seen record failed: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen records failed: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) InsertSeen(messageID string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO seen_messages (message_id, seen_at) VALUES (?, ?)`,
		messageID, time.Now(),
	)
	if err != nil {
		slog.Error("SQLiteStore InsertSeen failed", "error", err, "message_id", messageID)
		return fmt.Errorf("failed to insert seen message %s: %w", messageID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteSeen(messageID string) error {
	_, err := s.db.Exec(`DELETE FROM seen_messages WHERE message_id = ?`, messageID)
	if err != nil {
		slog.Error("SQLiteStore DeleteSeen failed", "error", err, "message_id", messageID)
		return fmt.Errorf("failed to delete seen message %s: %w", messageID, err)
	}
	return nil
}

// Package store provides storage backends for the processed-message record.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements SeenRepo.
var _ SeenRepo = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure the seen_messages table exists
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListSeen() ([]SeenRecord, error) {
	rows, err := s.db.Query(`SELECT position, message_id, seen_at FROM seen_messages ORDER BY position ASC`)
	if err != nil {
		slog.Error("PostgresStore ListSeen query failed", "error", err)
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

func (s *PostgresStore) InsertSeen(messageID string) error {
	_, err := s.db.Exec(
		`INSERT INTO seen_messages (message_id, seen_at) VALUES ($1, $2) ON CONFLICT (message_id) DO NOTHING`,
		messageID, time.Now(),
	)
	if err != nil {
		slog.Error("PostgresStore InsertSeen failed", "error", err, "message_id", messageID)
		return fmt.Errorf("failed to insert seen message %s: %w", messageID, err)
	}
	return nil
}

func (s *PostgresStore) DeleteSeen(messageID string) error {
	_, err := s.db.Exec(`DELETE FROM seen_messages WHERE message_id = $1`, messageID)
	if err != nil {
		slog.Error("PostgresStore DeleteSeen failed", "error", err, "message_id", messageID)
		return fmt.Errorf("failed to delete seen message %s: %w", messageID, err)
	}
	return nil
}

// Package store provides storage backends for the processed-message record.
//
// The durable state is a single ordered set of message ids. Insertion order
// is significant: the idempotency cache evicts oldest-first, so every backend
// must return records in the order they were inserted. SQLite and PostgreSQL
// backends are provided for production use, plus an in-memory backend for
// tests.
package store

import (
	"sync"
	"time"
)

// SeenRecord is one processed-message entry in the durable store.
type SeenRecord struct {
	MessageID string    `json:"message_id"`
	Position  int64     `json:"position"`
	SeenAt    time.Time `json:"seen_at"`
}

// SeenRepo defines the persistence interface for the idempotency cache.
// Only presence and insertion order are stored; capacity is a process-wide
// setting supplied at startup and never persisted.
type SeenRepo interface {
	// ListSeen returns all records ordered by insertion position, oldest first.
	ListSeen() ([]SeenRecord, error)

	// InsertSeen appends a message id to the store. Inserting an id that is
	// already present is a no-op.
	InsertSeen(messageID string) error

	// DeleteSeen removes a message id from the store. Deleting an absent id
	// is a no-op.
	DeleteSeen(messageID string) error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore is a non-durable SeenRepo used in tests and as a fallback
// when no database is configured.
type InMemoryStore struct {
	mu      sync.Mutex
	records []SeenRecord
	nextPos int64
}

// Compile-time check that InMemoryStore implements SeenRepo.
var _ SeenRepo = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) ListSeen() ([]SeenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SeenRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *InMemoryStore) InsertSeen(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.MessageID == messageID {
			return nil
		}
	}
	s.nextPos++
	s.records = append(s.records, SeenRecord{MessageID: messageID, Position: s.nextPos, SeenAt: time.Now()})
	return nil
}

func (s *InMemoryStore) DeleteSeen(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.MessageID == messageID {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return nil
}

package store

import (
	"path/filepath"
	"syscall"
	"testing"
)

func TestInMemoryStore_OrderAndDedup(t *testing.T) {
	s := NewInMemoryStore()
	for _, id := range []string{"a", "b", "c", "b"} {
		if err := s.InsertSeen(id); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	records, err := s.ListSeen()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records after duplicate insert, got %d", len(records))
	}
	for i, want := range []string{"a", "b", "c"} {
		if records[i].MessageID != want {
			t.Errorf("record %d: expected %s, got %s", i, want, records[i].MessageID)
		}
	}

	if err := s.DeleteSeen("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.DeleteSeen("missing"); err != nil {
		t.Fatalf("deleting absent id should be a no-op: %v", err)
	}
	records, _ = s.ListSeen()
	if len(records) != 2 || records[0].MessageID != "b" {
		t.Errorf("unexpected records after delete: %+v", records)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "state", "linkbrief.db")
	s, err := NewSQLiteStore(WithSQLiteDSN(dsn))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer s.Close()

	for _, id := range []string{"m1", "m2", "m3"} {
		if err := s.InsertSeen(id); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}
	// Duplicate insert must be a no-op.
	if err := s.InsertSeen("m2"); err != nil {
		t.Fatalf("duplicate insert failed: %v", err)
	}
	if err := s.DeleteSeen("m1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	records, err := s.ListSeen()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 2 || records[0].MessageID != "m2" || records[1].MessageID != "m3" {
		t.Errorf("unexpected records: %+v", records)
	}
	if records[0].Position >= records[1].Position {
		t.Errorf("positions not monotonic: %+v", records)
	}
}

func TestSQLiteStore_RequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore(); err == nil {
		t.Error("expected error when DSN is not set")
	}
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	// This test requires a running PostgreSQL instance.
	// Set the DATABASE_URL environment variable for connection string.
	connStr := getenvOrSkip(t, "DATABASE_URL")
	s, err := NewPostgresStore(WithPostgresDSN(connStr))
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer s.Close()
	s.db.Exec("DELETE FROM seen_messages")

	if err := s.InsertSeen("pg1"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := s.InsertSeen("pg2"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	records, err := s.ListSeen()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 2 || records[0].MessageID != "pg1" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func getenvOrSkip(t *testing.T, key string) string {
	v := ""
	if val, ok := syscall.Getenv(key); ok {
		v = val
	}
	if v == "" {
		t.Skipf("env %s not set", key)
	}
	return v
}

// Package dedup implements the bounded idempotency cache for inbound messages.
//
// The cache answers "has this message id been processed before?" and records
// new ids with write-through persistence. It is insertion-ordered and bounded:
// once the configured capacity is exceeded the oldest-inserted id is evicted,
// regardless of how often it was queried since. Lookups never affect eviction
// order (FIFO, not LRU).
package dedup

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/linkbrief/linkbrief/internal/store"
)

// DefaultCapacity is the number of message ids retained when no explicit
// capacity is configured.
const DefaultCapacity = 1000

// Cache is a bounded, insertion-ordered set of processed message ids backed
// by a store.SeenRepo. All methods are safe for concurrent use; the
// check-then-record sequence is atomic via CheckAndRecord, so two concurrent
// deliveries of the same message cannot both pass the dedup check.
type Cache struct {
	mu       sync.Mutex
	repo     store.SeenRepo
	capacity int
	seen     map[string]struct{}
	order    []string // insertion order, oldest first
}

// Load builds a cache from the durable store. A missing or unreadable store
// degrades to an empty cache and is never fatal; persisted state larger than
// the configured capacity is trimmed oldest-first. Capacity comes from the
// caller, never from persisted state, so it can be changed across restarts.
func Load(repo store.SeenRepo, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		repo:     repo,
		capacity: capacity,
		seen:     make(map[string]struct{}),
	}

	records, err := repo.ListSeen()
	if err != nil {
		slog.Warn("dedup.Load: failed to read persisted state, starting empty", "error", err)
		return c
	}
	for _, r := range records {
		if _, ok := c.seen[r.MessageID]; ok {
			continue
		}
		c.seen[r.MessageID] = struct{}{}
		c.order = append(c.order, r.MessageID)
	}
	if err := c.evictLocked(); err != nil {
		slog.Warn("dedup.Load: failed to trim persisted state to capacity", "error", err)
	}
	slog.Info("dedup.Load: cache loaded", "entries", len(c.order), "capacity", c.capacity)
	return c
}

// Contains reports whether the id has been recorded and not yet evicted.
func (c *Cache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[id]
	return ok
}

// Record inserts the id and persists it before returning. If the insertion
// pushes the cache over capacity, the oldest entries are evicted until the
// bound holds again. A persistence failure is returned to the caller but the
// in-memory mark stays in place, so the current process still deduplicates;
// only durability across a restart is weakened.
func (c *Cache) Record(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordLocked(id)
}

// CheckAndRecord atomically checks membership and records the id when absent.
// It returns true when the id was already present (the caller must not
// process the message again).
func (c *Cache) CheckAndRecord(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[id]; ok {
		return true, nil
	}
	return false, c.recordLocked(id)
}

// Forget removes the id from the cache and the store. Used by the
// mark-after-dispatch mode to release a provisional mark when the dispatch
// never happened.
func (c *Cache) Forget(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[id]; !ok {
		return nil
	}
	delete(c.seen, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if err := c.repo.DeleteSeen(id); err != nil {
		return fmt.Errorf("failed to delete %s from store: %w", id, err)
	}
	return nil
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// recordLocked inserts the id, evicts down to capacity and writes through to
// the store. Caller must hold c.mu. The lock is held across the store writes:
// each is a single prepared statement, and releasing between the in-memory
// mutation and the write would let a concurrent eviction reorder the store.
func (c *Cache) recordLocked(id string) error {
	if _, ok := c.seen[id]; ok {
		return nil
	}
	c.seen[id] = struct{}{}
	c.order = append(c.order, id)

	if err := c.evictLocked(); err != nil {
		return err
	}
	if err := c.repo.InsertSeen(id); err != nil {
		return fmt.Errorf("failed to persist %s: %w", id, err)
	}
	return nil
}

// evictLocked removes oldest entries until the size is within capacity. The
// loop matters when the capacity was lowered across a restart. Caller must
// hold c.mu.
func (c *Cache) evictLocked() error {
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
		slog.Debug("dedup.Cache: evicted oldest entry", "id", oldest, "size", len(c.order))
		if err := c.repo.DeleteSeen(oldest); err != nil {
			return fmt.Errorf("failed to delete evicted id %s: %w", oldest, err)
		}
	}
	return nil
}

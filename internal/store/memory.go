package store

import (
	"context"
	"sync"
	"time"

	"github.com/leomayn/planner/internal/planner"
)

type memoryEntry struct {
	rec       planner.StoredReport
	expiresAt time.Time
}

// MemoryStore is an in-process ReportStore used for development and tests.
// Expired entries are removed lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put stores a copy of the record under the identifier.
func (m *MemoryStore) Put(_ context.Context, id string, rec *planner.StoredReport, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Key(id)] = memoryEntry{rec: *rec, expiresAt: m.now().Add(ttl)}
	return nil
}

// Get returns the stored record, or ErrNotFound once the TTL has passed.
func (m *MemoryStore) Get(_ context.Context, id string) (*planner.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(id)
	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}
	rec := entry.rec
	return &rec, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() {}

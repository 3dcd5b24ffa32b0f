// internal/cache/memory.go
//
// In-memory implementation of the cache Store interface.
// Used in tests and for local development without a database file.
//
// Characteristics:
//   - Entries held in a map guarded by an RWMutex.
//   - TTL enforced lazily on read.
//   - State is lost when the process restarts.

package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memory is a map-based Store implementation.
type memory struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

// NewMemory constructs an in-memory Store.
func NewMemory() Store {
	return &memory{entries: make(map[string]memEntry)}
}

func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return nil, ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = newMemEntry(value, ttl)
	return nil
}

func (m *memory) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && !e.expired(time.Now()) {
		return false, nil
	}
	m.entries[key] = newMemEntry(value, ttl)
	return true, nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memory) Close() error { return nil }

func newMemEntry(value []byte, ttl time.Duration) memEntry {
	e := memEntry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl != 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	return e
}

// internal/cache/store.go
//
// Date-keyed cache store interface for puzzle payloads and the
// used-answers ledger. Implementations may be backed by SQLite (default),
// Badger, or memory (tests/dev).
//
// Semantics:
//   - Entries carry an optional TTL; an expired entry reads as absent.
//     Expiry is the store's job, not the caller's.
//   - SetIfAbsent is the conditional-write primitive the orchestrator uses
//     to guarantee at-most-one visible generation per date: exactly one of
//     N concurrent writers for a key observes stored=true.

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports an absent (or expired) key.
var ErrNotFound = errors.New("cache: not found")

// LedgerKey is the single well-known key holding the used-answers ledger.
const LedgerKey = "used_chengyu"

// PuzzleKey returns the cache key for a date's puzzle payload.
func PuzzleKey(date string) string { return "puzzle:" + date }

// Store is the persistence interface for cache entries.
type Store interface {
	// Get returns the value for key, or ErrNotFound if absent/expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes key unconditionally. ttl == 0 means no expiry;
	// a negative ttl writes an already-expired entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfAbsent writes key only if no live entry exists.
	// Returns true if this call stored the value.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}

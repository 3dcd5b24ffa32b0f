// internal/ledger/ledger.go
//
// Rolling record of previously used answers, consulted at generation time
// to bias the generator away from repeats. The record grows without bound;
// that is an accepted limitation, and the interface exists so a bounded or
// rotating policy can replace the KV-backed one without touching the
// orchestrator.
//
// Ledger writes are best-effort by contract: a duplicate puzzle is a
// quality degradation, not a correctness failure.

package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/riddleyu/go-server/internal/cache"
)

// Ledger records answers that have already been served.
type Ledger interface {
	// Used returns every recorded answer. An empty ledger is not an error.
	Used(ctx context.Context) ([]string, error)

	// Append records one more answer.
	Append(ctx context.Context, answer string) error
}

// kvLedger stores the ledger as a JSON array under a single cache key,
// with no expiry.
type kvLedger struct {
	store cache.Store
}

// New builds a Ledger on top of a cache store.
func New(store cache.Store) Ledger {
	return &kvLedger{store: store}
}

func (l *kvLedger) Used(ctx context.Context) ([]string, error) {
	raw, err := l.store.Get(ctx, cache.LedgerKey)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var used []string
	if err := json.Unmarshal(raw, &used); err != nil {
		return nil, fmt.Errorf("ledger: decode: %w", err)
	}
	return used, nil
}

// Append re-reads before writing so concurrent appenders lose at most one
// entry, never the whole record. Losing an entry is acceptable here.
func (l *kvLedger) Append(ctx context.Context, answer string) error {
	used, err := l.Used(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(append(used, answer))
	if err != nil {
		return err
	}
	return l.store.Set(ctx, cache.LedgerKey, raw, 0)
}

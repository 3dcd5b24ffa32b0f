// internal/orchestrator/orchestrator.go
//
// Decides, for a given date, whether to generate, serve from cache, fall
// back to the previous day, or report "not yet available".
//
// Concurrency: at most one generation per date may ever become visible.
// Two layers enforce this:
//   - singleflight collapses concurrent in-process misses for one date
//     into a single generator call;
//   - the puzzle write is conditional (SetIfAbsent), so if another
//     process generated the same date first, our result is discarded and
//     the stored entry is served instead. The loser never appends to the
//     ledger.
//
// Failure policy (recover locally vs. propagate):
//   - cache read errors: degrade to "absent", log, continue;
//   - ledger read/write errors: log, continue (quality, not correctness);
//   - generator errors: propagate, never write a placeholder;
//   - puzzle write errors after a successful generation: propagate,
//     since a silent write failure would break the idempotency check
//     on the next scheduled run.

package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/riddleyu/go-server/internal/cache"
	"github.com/riddleyu/go-server/internal/daily"
	"github.com/riddleyu/go-server/internal/generator"
	"github.com/riddleyu/go-server/internal/ledger"
	"github.com/riddleyu/go-server/internal/puzzle"
)

// PuzzleTTL is deliberately longer than 24 hours so an entry written at
// generation time is still readable at the last possible moment of its
// date, regardless of clock or timezone drift between writer and reader.
const PuzzleTTL = 25 * time.Hour

// ErrNotYetAvailable reports a legitimate, expected state: no puzzle for
// the requested date and no usable fallback. Callers distinguish it from
// real failures ("come back later" vs. "something broke").
var ErrNotYetAvailable = errors.New("puzzle not yet available")

// Status discriminates the outcome of Ensure.
type Status string

const (
	StatusGenerated     Status = "generated"
	StatusAlreadyCached Status = "already cached"
)

// Mode describes who is fetching.
type Mode int

const (
	// ModePassive is a plain read: no generation is triggered.
	ModePassive Mode = iota
	// ModeInteractive is an end-user read: if nothing is cached at all,
	// the orchestrator may generate synchronously so the first visitor of
	// the day is not left with nothing.
	ModeInteractive
)

// Options tune the read path.
type Options struct {
	// Fallback serves the previous date's entry when today's is absent.
	Fallback bool
	// OnDemand allows interactive fetches to trigger generation.
	OnDemand bool
}

// Orchestrator coordinates cache, generator and ledger for daily puzzles.
type Orchestrator struct {
	store  cache.Store
	gen    generator.Generator
	used   ledger.Ledger
	opts   Options
	flight singleflight.Group
}

// New wires an Orchestrator.
func New(store cache.Store, gen generator.Generator, used ledger.Ledger, opts Options) *Orchestrator {
	return &Orchestrator{store: store, gen: gen, used: used, opts: opts}
}

// Ensure makes sure an entry exists for date.
//
// Without force it is idempotent: an existing entry short-circuits before
// any generator call, and if a concurrent writer stores the date first,
// the freshly generated result is thrown away in favor of theirs. With
// force the entry is regenerated and overwritten unconditionally.
func (o *Orchestrator) Ensure(ctx context.Context, date string, force bool) (Status, *puzzle.Puzzle, error) {
	if !force {
		if p := o.read(ctx, date); p != nil {
			return StatusAlreadyCached, p, nil
		}
	}

	used, err := o.used.Used(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read used-answers ledger")
		used = nil
	}

	p, err := o.gen.Generate(ctx, date, used)
	if err != nil {
		return "", nil, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", nil, fmt.Errorf("encode puzzle for %s: %w", date, err)
	}

	if force {
		if err := o.store.Set(ctx, cache.PuzzleKey(date), raw, PuzzleTTL); err != nil {
			return "", nil, fmt.Errorf("store puzzle for %s: %w", date, err)
		}
	} else {
		stored, err := o.store.SetIfAbsent(ctx, cache.PuzzleKey(date), raw, PuzzleTTL)
		if err != nil {
			return "", nil, fmt.Errorf("store puzzle for %s: %w", date, err)
		}
		if !stored {
			// Lost the race. Serve the winner's entry; ours is discarded
			// and its answer never reaches the ledger.
			log.Info().Str("date", date).Msg("discarding duplicate generation, entry already stored")
			if existing := o.read(ctx, date); existing != nil {
				return StatusAlreadyCached, existing, nil
			}
			return StatusAlreadyCached, p, nil
		}
	}

	if err := o.used.Append(ctx, p.AnswerString()); err != nil {
		log.Warn().Err(err).Str("date", date).Msg("append to used-answers ledger")
	}
	return StatusGenerated, p, nil
}

// Fetch returns the puzzle for date.
//
// Lookup order: the date's own entry; the previous date's entry (when
// fallback is enabled); synchronous generation (interactive mode with
// on-demand enabled); otherwise ErrNotYetAvailable.
func (o *Orchestrator) Fetch(ctx context.Context, date string, mode Mode) (*puzzle.Puzzle, error) {
	if p := o.read(ctx, date); p != nil {
		return p, nil
	}

	if o.opts.Fallback {
		if prev, err := daily.Previous(date); err == nil {
			if p := o.read(ctx, prev); p != nil {
				log.Info().Str("date", date).Str("served", prev).Msg("serving previous day's puzzle")
				return p, nil
			}
		}
	}

	if mode == ModeInteractive && o.opts.OnDemand {
		v, err, _ := o.flight.Do(date, func() (any, error) {
			_, p, err := o.Ensure(ctx, date, false)
			return p, err
		})
		if err != nil {
			return nil, err
		}
		return v.(*puzzle.Puzzle), nil
	}

	return nil, ErrNotYetAvailable
}

// read loads and decodes a cached entry. Store errors and undecodable
// entries degrade to "absent": availability beats strict caching here.
func (o *Orchestrator) read(ctx context.Context, date string) *puzzle.Puzzle {
	raw, err := o.store.Get(ctx, cache.PuzzleKey(date))
	if errors.Is(err, cache.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("date", date).Msg("cache read failed, treating as absent")
		return nil
	}
	var p puzzle.Puzzle
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("date", date).Msg("undecodable cache entry, treating as absent")
		return nil
	}
	return &p
}

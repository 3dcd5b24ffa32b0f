// internal/cache/sqlite.go
//
// SQLite-backed implementation of the cache Store interface.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout).
//   - Bootstrapping the kv_entries schema.
//   - TTL enforcement: expiry checked on read, expired rows swept
//     periodically in the background.
//   - Conditional writes via INSERT OR IGNORE inside a transaction, which
//     is what makes SetIfAbsent safe across processes sharing the file.

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const sweepInterval = 10 * time.Minute

type sqlite struct {
	db   *sql.DB
	stop chan struct{}
}

// NewSQLite opens (and creates if missing) a SQLite-backed store at dsn.
func NewSQLite(dsn string) (Store, error) {
	// Ensure directory exists for ./data/cache.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at INTEGER
	);`); err != nil {
		return nil, fmt.Errorf("create kv_entries: %w", err)
	}

	s := &sqlite{db: db, stop: make(chan struct{})}
	go s.sweep()
	return s, nil
}

func (s *sqlite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_entries WHERE key=?`, key,
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid && time.Now().Unix() > expiresAt.Int64 {
		// Lazy delete; the sweeper also catches these.
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=?`, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("delete expired entry")
		}
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *sqlite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv_entries(key, value, expires_at) VALUES(?,?,?)`,
		key, value, expiryArg(ttl))
	return err
}

func (s *sqlite) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// A dead row must not block a fresh write.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE key=? AND expires_at IS NOT NULL AND expires_at < ?`,
		key, time.Now().Unix()); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO kv_entries(key, value, expires_at) VALUES(?,?,?)`,
		key, value, expiryArg(ttl))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqlite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=?`, key)
	return err
}

func (s *sqlite) Close() error {
	close(s.stop)
	return s.db.Close()
}

// sweep removes expired rows on an interval until Close.
func (s *sqlite) sweep() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			res, err := s.db.Exec(
				`DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at < ?`,
				time.Now().Unix())
			if err != nil {
				log.Warn().Err(err).Msg("sweep expired cache entries")
				continue
			}
			if n, _ := res.RowsAffected(); n > 0 {
				log.Debug().Int64("rows", n).Msg("swept expired cache entries")
			}
		}
	}
}

// expiryArg converts a ttl into the expires_at column value (NULL = keep).
func expiryArg(ttl time.Duration) any {
	if ttl == 0 {
		return nil
	}
	return time.Now().Add(ttl).Unix()
}

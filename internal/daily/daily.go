// internal/daily/daily.go
//
// Canonical calendar policy for the daily puzzle.
// Every piece of code that needs "today", the cron-triggered generate
// path and the read path alike, goes through one Calendar, so the two
// sides can never disagree about which date a puzzle belongs to.

package daily

import (
	"fmt"
	"time"
)

// KeyLayout is the canonical YYYY-MM-DD form of a date key.
const KeyLayout = "2006-01-02"

// Calendar resolves "today" against a fixed timezone and an injectable
// clock. Tests pin Now to a constant to make dates deterministic.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New builds a Calendar for the named IANA timezone.
func New(tz string) (*Calendar, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("daily: load timezone %q: %w", tz, err)
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

// Fixed returns a Calendar whose clock always reads t, for tests.
func Fixed(t time.Time) *Calendar {
	return &Calendar{loc: t.Location(), now: func() time.Time { return t }}
}

// Today returns the current date key in the calendar's timezone.
func (c *Calendar) Today() string {
	return c.now().In(c.loc).Format(KeyLayout)
}

// Valid reports whether key parses as a YYYY-MM-DD date.
func Valid(key string) bool {
	_, err := time.Parse(KeyLayout, key)
	return err == nil
}

// Previous returns the date key for the day before key.
// Used by the fallback read path to smooth over the window between a
// day's rollover and the scheduled generation completing.
func Previous(key string) (string, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return "", fmt.Errorf("daily: bad date key %q: %w", key, err)
	}
	return t.AddDate(0, 0, -1).Format(KeyLayout), nil
}

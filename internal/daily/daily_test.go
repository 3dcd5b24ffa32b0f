package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayUsesCalendarTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:30 UTC on the 27th is still the evening of the 26th in New York.
	utc := time.Date(2026, 2, 27, 3, 30, 0, 0, time.UTC)

	cal := Fixed(utc.In(ny))
	assert.Equal(t, "2026-02-26", cal.Today())

	cal = Fixed(utc)
	assert.Equal(t, "2026-02-27", cal.Today())
}

func TestNewRejectsBadZone(t *testing.T) {
	_, err := New("Not/AZone")
	assert.Error(t, err)

	cal, err := New("UTC")
	require.NoError(t, err)
	assert.True(t, Valid(cal.Today()))
}

func TestPrevious(t *testing.T) {
	prev, err := Previous("2026-02-27")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-26", prev)

	prev, err = Previous("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", prev)

	_, err = Previous("27-02-2026")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("2026-02-26"))
	assert.False(t, Valid("2026-2-26"))
	assert.False(t, Valid("tomorrow"))
	assert.False(t, Valid(""))
}

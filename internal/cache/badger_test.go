package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadger(t *testing.T) Store {
	t.Helper()
	s, err := NewBadger("") // in-memory
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestBadger(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Hour))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerTTL(t *testing.T) {
	ctx := context.Background()
	s := newTestBadger(t)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Second))
	time.Sleep(1100 * time.Millisecond)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestBadger(t)

	stored, err := s.SetIfAbsent(ctx, "k", []byte("first"), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = s.SetIfAbsent(ctx, "k", []byte("second"), time.Hour)
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

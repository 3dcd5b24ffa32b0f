package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	defer s.Close()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound, "expired entries read as absent")
}

func TestMemorySetIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	defer s.Close()

	stored, err := s.SetIfAbsent(ctx, "k", []byte("first"), 0)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = s.SetIfAbsent(ctx, "k", []byte("second"), 0)
	require.NoError(t, err)
	assert.False(t, stored, "a live entry blocks the second writer")

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got, "the first writer wins")
}

func TestMemorySetIfAbsentReplacesExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", []byte("old"), time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	stored, err := s.SetIfAbsent(ctx, "k", []byte("new"), 0)
	require.NoError(t, err)
	assert.True(t, stored, "an expired entry does not block a fresh write")
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", []byte("abc"), 0))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

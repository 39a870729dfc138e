package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStore(time.Minute, time.Minute)
	defer s.Close()

	rec := haltedRecord("s1")
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rec.Topic, got.Topic)

	// Loaded copies are isolated from the cached record.
	got.Topic = "mutated"
	again, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "topic for s1", again.Topic)
}

func TestCacheStoreUnknownSession(t *testing.T) {
	s := NewCacheStore(time.Minute, time.Minute)
	defer s.Close()

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStore(20*time.Millisecond, time.Minute)
	defer s.Close()

	require.NoError(t, s.Save(ctx, haltedRecord("s1")))
	time.Sleep(40 * time.Millisecond)

	// An expired session behaves exactly like one that never existed.
	_, err := s.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheStoreSaveRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStore(60*time.Millisecond, time.Minute)
	defer s.Close()

	require.NoError(t, s.Save(ctx, haltedRecord("s1")))
	time.Sleep(40 * time.Millisecond)
	require.NoError(t, s.Save(ctx, haltedRecord("s1")))
	time.Sleep(40 * time.Millisecond)

	_, err := s.Load(ctx, "s1")
	assert.NoError(t, err)
}

func TestCacheStoreRejectsInvalidRecord(t *testing.T) {
	s := NewCacheStore(time.Minute, time.Minute)
	defer s.Close()

	rec := NewRecord("")
	assert.ErrorIs(t, s.Save(context.Background(), rec), ErrInvalidRecord)
}

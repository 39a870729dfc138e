package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStore is an in-memory session store with per-session expiry. Useful
// for long-running processes that should not accumulate abandoned sessions
// forever; every save refreshes the session's TTL.
type CacheStore struct {
	sessions *cache.Cache
}

// NewCacheStore returns a store whose sessions expire ttl after their last
// save. A cleanup sweep runs every cleanup interval; pass cache.NoExpiration
// as ttl to keep sessions indefinitely.
func NewCacheStore(ttl, cleanup time.Duration) *CacheStore {
	return &CacheStore{
		sessions: cache.New(ttl, cleanup),
	}
}

// Load implements Store. An expired session behaves like an unknown one.
func (c *CacheStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := c.sessions.Get(sessionID)
	if !ok {
		return nil, ErrNotFound
	}
	rec, ok := v.(*Record)
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Save implements Store.
func (c *CacheStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	c.sessions.Set(rec.SessionID, rec.Clone(), cache.DefaultExpiration)
	return nil
}

// Close implements Store.
func (c *CacheStore) Close() error {
	c.sessions.Flush()
	return nil
}

// Len returns the number of stored sessions. Recently expired sessions may
// still be counted until the next cleanup sweep runs.
func (c *CacheStore) Len() int {
	return c.sessions.ItemCount()
}

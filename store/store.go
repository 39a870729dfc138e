package store

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by session stores.
var (
	// ErrNotFound means no record exists for the requested session id.
	ErrNotFound = errors.New("store: session not found")
	// ErrInvalidRecord means a record failed validation before a save.
	ErrInvalidRecord = errors.New("store: invalid record")
	// ErrClosed means the store was closed and can no longer serve requests.
	ErrClosed = errors.New("store: closed")
)

// Store persists session records keyed by session id. Save replaces the
// whole record for its session atomically; the last writer wins. Sessions
// for different ids are fully independent, so implementations only need to
// guard their own internals for concurrent use.
type Store interface {
	// Load returns a copy of the record for sessionID, or ErrNotFound.
	Load(ctx context.Context, sessionID string) (*Record, error)
	// Save validates rec and replaces the stored record for its session.
	Save(ctx context.Context, rec *Record) error
	// Close releases any resources held by the store.
	Close() error
}

// LoadOrCreate looks up a session and falls back to a fresh record when the
// id is unknown. An unknown session id is how every session starts, so it is
// never an error at this level.
func LoadOrCreate(ctx context.Context, s Store, sessionID string) (*Record, error) {
	rec, err := s.Load(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return NewRecord(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	return rec, nil
}

package store

import (
	"context"
	"sort"

	"github.com/sasha-s/go-deadlock"
)

// MemoryStore keeps session records in a map. It is the default store for
// tests and short-lived processes; records vanish when the process exits.
// Loads and saves exchange deep copies, never the stored pointer.
type MemoryStore struct {
	mu       deadlock.RWMutex
	sessions map[string]*Record
	closed   bool
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Record),
	}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	rec, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.sessions[rec.SessionID] = rec.Clone()
	return nil
}

// Close implements Store. Further calls on a closed store fail with
// ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	m.closed = true
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sessions returns the stored session ids in sorted order.
func (m *MemoryStore) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

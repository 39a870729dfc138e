package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists session records in a SQLite database so sessions
// survive process restarts. Each save replaces the session's row in a single
// statement, which keeps snapshots atomic under the last-writer-wins rule.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// the schema migration. Use ":memory:" for an ephemeral database in tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// SQLite allows one writer at a time; funnel everything through a
	// single connection instead of fighting over the file lock.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	phase      TEXT NOT NULL,
	checkpoint TEXT NOT NULL,
	record     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS record_schema (
	version    INTEGER PRIMARY KEY,
	definition TEXT NOT NULL,
	applied_at TIMESTAMP NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating session schema: %w", err)
	}
	def, err := RecordSchemaJSON()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO record_schema (version, definition, applied_at) VALUES (?, ?, ?)
		 ON CONFLICT (version) DO NOTHING`,
		SchemaVersion, def, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return &rec, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", rec.SessionID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, phase, checkpoint, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id) DO UPDATE SET
			phase      = excluded.phase,
			checkpoint = excluded.checkpoint,
			record     = excluded.record,
			updated_at = excluded.updated_at`,
		rec.SessionID, string(rec.Phase), string(rec.PendingCheckpoint), raw,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", rec.SessionID, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Sessions returns the ids of all persisted sessions, most recently updated
// first.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

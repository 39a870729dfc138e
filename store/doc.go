// Package store persists writing-session state between invocations.
//
// A session's entire state is one Record: everything the workflow phases
// produced so far, which phase runs next, and which human checkpoint (if
// any) the session is waiting on. Stores implement a small contract. Load
// returns a deep copy of the record for a session id or ErrNotFound, and
// Save atomically replaces the whole record for its session. Records are
// never partially updated in place; the driver mutates a working copy and
// saves it only when the session halts at a checkpoint or finishes, so a
// crash mid-run leaves the previous snapshot intact.
//
// Three implementations cover the usual deployments:
//
//   - MemoryStore: plain map, no expiry. Tests and one-shot runs.
//   - CacheStore: in-memory with per-session TTL for long-lived processes.
//   - SQLiteStore: durable single-file database so sessions survive
//     restarts.
//
// The serialized format is described by RecordSchema; SQLiteStore records
// the schema version next to the data.
package store

// Package store persists research run snapshots keyed by request id.
//
// A Record holds the request id, a UTC timestamp, a status (running,
// completed or failed) and the run state as raw JSON. Every backend
// implements the same Store interface:
//
//	type Store interface {
//	    Save(ctx context.Context, rec *Record) error
//	    Load(ctx context.Context, requestID string) (*Record, error)
//	    List(ctx context.Context) ([]string, error)
//	    Delete(ctx context.Context, requestID string) error
//	}
//
// Saves overwrite, so the last write for a request wins. Load returns an
// error wrapping ErrNotFound for unknown ids.
//
// # Backends
//
// Backends live in subpackages and register themselves with Open when
// imported, the way database/sql drivers do:
//
//	import (
//	    "github.com/aishitdharwal/ai-agent/store"
//	    _ "github.com/aishitdharwal/ai-agent/store/s3"
//	)
//
//	s, err := store.Open(ctx, cfg) // cfg.StateBackend == "s3"
//
// Available backends:
//   - s3: one object per request at states/<request_id>.json (the deployed default)
//   - memory: process-local map, for tests and one-off runs
//   - file: one JSON file per request in a directory
//   - redis: string per request plus an index set, with optional TTL
//   - sqlite: a single table, upserted on request id
//   - postgres: a JSONB table through a pgx pool
package store

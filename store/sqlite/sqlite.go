// Package sqlite stores research records in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/store"
)

func init() {
	store.Register("sqlite", func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		return New(ctx, Options{Path: cfg.SQLitePath})
	})
}

// Store keeps records in a single SQLite table.
type Store struct {
	db        *sql.DB
	tableName string
}

// Options configures the SQLite database.
type Options struct {
	Path      string
	TableName string // Default "research_states"
}

// New opens the database and creates the table if needed.
func New(ctx context.Context, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	tableName := opts.TableName
	if tableName == "" {
		tableName = "research_states"
	}

	s := &Store{db: db, tableName: tableName}
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *Store) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			request_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			state TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the record.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (request_id, status, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET
			status = excluded.status,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query,
		rec.RequestID,
		string(rec.Status),
		string(rec.State),
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Load retrieves the record for requestID.
func (s *Store) Load(ctx context.Context, requestID string) (*store.Record, error) {
	if err := store.ValidateID(requestID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT request_id, status, state, updated_at FROM %s WHERE request_id = ?`, s.tableName)

	var (
		rec       store.Record
		status    string
		state     string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, query, requestID).Scan(&rec.RequestID, &status, &state, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	rec.Status = store.Status(status)
	rec.State = []byte(state)
	rec.Timestamp = ts
	return &rec, nil
}

// List returns every request id, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT request_id FROM %s ORDER BY request_id`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating state rows: %w", err)
	}
	return ids, nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	if err := store.ValidateID(requestID); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE request_id = ?", s.tableName)
	if _, err := s.db.ExecContext(ctx, query, requestID); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

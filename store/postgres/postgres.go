// Package postgres stores research records in a PostgreSQL JSONB table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/store"
)

func init() {
	store.Register("postgres", func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		if cfg.PostgresDSN == "" {
			return nil, errors.New("POSTGRES_DSN not set")
		}
		s, err := New(ctx, Options{ConnString: cfg.PostgresDSN})
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	})
}

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store keeps records in a JSONB table.
type Store struct {
	pool      DBPool
	tableName string
}

// Options configures the Postgres connection.
type Options struct {
	ConnString string
	TableName  string // Default "research_states"
}

// New connects a pool.
func New(ctx context.Context, opts Options) (*Store, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewWithPool(pool, opts.TableName), nil
}

// NewWithPool creates a store over an existing pool.
func NewWithPool(pool DBPool, tableName string) *Store {
	if tableName == "" {
		tableName = "research_states"
	}
	return &Store{pool: pool, tableName: tableName}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *Store) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			request_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			state JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Save upserts the record.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	state := []byte(rec.State)
	if len(state) == 0 {
		state = []byte("null")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (request_id, status, state, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (request_id) DO UPDATE SET
			status = EXCLUDED.status,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)

	_, err := s.pool.Exec(ctx, query, rec.RequestID, string(rec.Status), state, rec.Timestamp)
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

	query := fmt.Sprintf(`
		SELECT request_id, status, state, updated_at
		FROM %s
		WHERE request_id = $1
	`, s.tableName)

	var (
		rec    store.Record
		status string
		state  []byte
	)
	err := s.pool.QueryRow(ctx, query, requestID).Scan(&rec.RequestID, &status, &state, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	rec.Status = store.Status(status)
	rec.State = state
	return &rec, nil
}

// List returns every request id, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT request_id FROM %s ORDER BY request_id`, s.tableName)

	rows, err := s.pool.Query(ctx, query)
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

	query := fmt.Sprintf("DELETE FROM %s WHERE request_id = $1", s.tableName)
	if _, err := s.pool.Exec(ctx, query, requestID); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

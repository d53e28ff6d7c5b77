// Package memory is an in-process store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/store"
)

func init() {
	store.Register("memory", func(context.Context, *config.Config) (store.Store, error) {
		return New(), nil
	})
}

// Store keeps records in process memory.
type Store struct {
	mu      sync.RWMutex
	records map[string]store.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{records: make(map[string]store.Record)}
}

// Save stores a copy of rec.
func (s *Store) Save(_ context.Context, rec *store.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	cp := *rec
	cp.State = append([]byte(nil), rec.State...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.RequestID] = cp
	return nil
}

// Load returns a copy of the record for requestID.
func (s *Store) Load(_ context.Context, requestID string) (*store.Record, error) {
	if err := store.ValidateID(requestID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[requestID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, requestID)
	}
	rec.State = append([]byte(nil), rec.State...)
	return &rec, nil
}

// List returns every stored request id, sorted.
func (s *Store) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a record. Deleting an unknown id is not an error.
func (s *Store) Delete(_ context.Context, requestID string) error {
	if err := store.ValidateID(requestID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, requestID)
	return nil
}

// Package file stores each research record as a JSON file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/store"
)

const (
	ext    = ".json"
	tmpExt = ".tmp"
)

func init() {
	store.Register("file", func(_ context.Context, cfg *config.Config) (store.Store, error) {
		return New(cfg.StateDir)
	})
}

// Store writes one JSON file per request under a directory.
type Store struct {
	dir string
}

// New creates the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

// Save writes the record atomically through a temp file and rename.
func (s *Store) Save(_ context.Context, rec *store.Record) error {
	data, err := store.Marshal(rec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "state-*"+tmpExt)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(rec.RequestID)); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Load reads the record for requestID.
func (s *Store) Load(_ context.Context, requestID string) (*store.Record, error) {
	if err := store.ValidateID(requestID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(requestID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return store.Unmarshal(data)
}

// List returns the ids of every stored record, sorted.
func (s *Store) List(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the record file. Missing files are ignored.
func (s *Store) Delete(_ context.Context, requestID string) error {
	if err := store.ValidateID(requestID); err != nil {
		return err
	}
	if err := os.Remove(s.path(requestID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aishitdharwal/ai-agent/config"
)

// Factory builds a Store from configuration.
type Factory func(ctx context.Context, cfg *config.Config) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available to Open under name. Backends call it
// from init, so importing a backend package is enough to enable it.
// It panics if called twice for the same name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if f == nil {
		panic("store: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("store: Register called twice for backend " + name)
	}
	registry[name] = f
}

// Backends returns the names of the registered backends, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open builds the backend named by cfg.StateBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	registryMu.RLock()
	f, ok := registry[cfg.StateBackend]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown state backend %q (registered: %v)", cfg.StateBackend, Backends())
	}
	s, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s state store: %w", cfg.StateBackend, err)
	}
	return s, nil
}

// Close releases s if it holds resources.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishitdharwal/ai-agent/store"
	"github.com/aishitdharwal/ai-agent/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "states")
	s, err := New(dir)
	require.NoError(t, err)

	rec, err := store.NewRecord("req-9", store.StatusCompleted, map[string]string{"topic": "t"})
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), rec))

	data, err := os.ReadFile(filepath.Join(dir, "req-9.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"request_id": "req-9"`)
	assert.Contains(t, string(data), `"status": "completed"`)

	// Stray files are not records.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state-123.tmp"), []byte("x"), 0o644))

	ids, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"req-9"}, ids)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

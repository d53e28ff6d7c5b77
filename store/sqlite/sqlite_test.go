package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishitdharwal/ai-agent/store"
	"github.com/aishitdharwal/ai-agent/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(context.Background(), Options{Path: filepath.Join(t.TempDir(), "states.db")})
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "states.db")

	s, err := New(ctx, Options{Path: path, TableName: "runs"})
	require.NoError(t, err)

	rec, err := store.NewRecord("req-1", store.StatusCompleted, map[string]string{"summary": "done"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, rec))
	require.NoError(t, s.Close())

	s, err = New(ctx, Options{Path: path, TableName: "runs"})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, got.Status)
	assert.JSONEq(t, `{"summary": "done"}`, string(got.State))
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, Options{Path: ":memory:"})
	require.NoError(t, err)
	defer s.Close()

	rec, err := store.NewRecord("req-1", store.StatusRunning, []string{})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, rec))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"req-1"}, ids)
}

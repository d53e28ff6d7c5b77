// Package storetest holds the behavior every store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishitdharwal/ai-agent/store"
)

type sample struct {
	Topic       string   `json:"topic"`
	CurrentStep string   `json:"current_step"`
	KeyFindings []string `json:"key_findings"`
}

// Run exercises a fresh store from newStore in every subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)

		rec, err := store.NewRecord("req-1", store.StatusCompleted, sample{
			Topic:       "quantum computing",
			CurrentStep: "generate_summary",
			KeyFindings: []string{"a", "b"},
		})
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.Load(ctx, "req-1")
		require.NoError(t, err)
		assert.Equal(t, "req-1", got.RequestID)
		assert.Equal(t, store.StatusCompleted, got.Status)
		assert.True(t, rec.Timestamp.Equal(got.Timestamp), "timestamp %v != %v", rec.Timestamp, got.Timestamp)
		assert.JSONEq(t, string(rec.State), string(got.State))

		var decoded sample
		require.NoError(t, got.Decode(&decoded))
		assert.Equal(t, []string{"a", "b"}, decoded.KeyFindings)
	})

	t.Run("last write wins", func(t *testing.T) {
		s := newStore(t)

		running, err := store.NewRecord("req-2", store.StatusRunning, sample{CurrentStep: "search_web"})
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, running))

		done, err := store.NewRecord("req-2", store.StatusFailed, sample{CurrentStep: "extract_findings"})
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, done))

		got, err := s.Load(ctx, "req-2")
		require.NoError(t, err)
		assert.Equal(t, store.StatusFailed, got.Status)
		assert.JSONEq(t, string(done.State), string(got.State))

		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"req-2"}, ids)
	})

	t.Run("not found", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Load(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		s := newStore(t)

		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)

		for _, id := range []string{"c", "a", "b"} {
			rec, err := store.NewRecord(id, store.StatusRunning, sample{Topic: id})
			require.NoError(t, err)
			require.NoError(t, s.Save(ctx, rec))
		}

		ids, err = s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids)

		require.NoError(t, s.Delete(ctx, "b"))
		require.NoError(t, s.Delete(ctx, "never-saved"))

		_, err = s.Load(ctx, "b")
		assert.ErrorIs(t, err, store.ErrNotFound)

		ids, err = s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids)
	})

	t.Run("dot-prefixed id is listed", func(t *testing.T) {
		s := newStore(t)

		rec, err := store.NewRecord(".hidden", store.StatusCompleted, sample{Topic: "t"})
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, rec))

		_, err = s.Load(ctx, ".hidden")
		require.NoError(t, err)

		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{".hidden"}, ids)
	})

	t.Run("invalid id", func(t *testing.T) {
		s := newStore(t)

		for _, id := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
			err := s.Save(ctx, &store.Record{RequestID: id, Status: store.StatusRunning, State: []byte(`{}`)})
			assert.ErrorIs(t, err, store.ErrInvalidID, "save %q", id)

			_, err = s.Load(ctx, id)
			assert.ErrorIs(t, err, store.ErrInvalidID, "load %q", id)

			err = s.Delete(ctx, id)
			assert.ErrorIs(t, err, store.ErrInvalidID, "delete %q", id)
		}
	})
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishitdharwal/ai-agent/store"
	"github.com/aishitdharwal/ai-agent/store/storetest"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := New(Options{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, _ := newTestStore(t, 0)
		return s
	})
}

func TestStore_Keys(t *testing.T) {
	s, mr := newTestStore(t, 0)
	ctx := context.Background()

	rec, err := store.NewRecord("req-1", store.StatusRunning, map[string]string{"topic": "t"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, rec))

	assert.True(t, mr.Exists("research:state:req-1"))
	members, err := mr.Members("research:states")
	require.NoError(t, err)
	assert.Equal(t, []string{"req-1"}, members)
}

func TestStore_TTLExpiry(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"old", "new"} {
		rec, err := store.NewRecord(id, store.StatusCompleted, map[string]string{"id": id})
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, rec))
		if id == "old" {
			mr.FastForward(45 * time.Second)
		}
	}
	assert.Equal(t, time.Minute, mr.TTL("research:state:new"))

	mr.FastForward(30 * time.Second)

	_, err := s.Load(ctx, "old")
	assert.ErrorIs(t, err, store.ErrNotFound)

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, ids)

	members, err := mr.Members("research:states")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, members)
}

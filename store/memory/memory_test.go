package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishitdharwal/ai-agent/store"
	"github.com/aishitdharwal/ai-agent/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() })
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec, err := store.NewRecord("r", store.StatusRunning, map[string]string{"topic": "t"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, rec))

	rec.State[2] = 'X'

	got, err := s.Load(ctx, "r")
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic": "t"}`, string(got.State))
}

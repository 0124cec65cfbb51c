package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()

	require.NoError(t, r.SaveSessionID(ctx, "user-1", "game-a"))

	gameID, err := r.LoadSessionID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "game-a", gameID)

	// Saving again overwrites.
	require.NoError(t, r.SaveSessionID(ctx, "user-1", "game-b"))
	gameID, err = r.LoadSessionID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "game-b", gameID)

	require.NoError(t, r.ClearSessionID(ctx, "user-1"))
	_, err = r.LoadSessionID(ctx, "user-1")
	assert.True(t, IsNotFound(err))
}

func TestLoadSessionIDNotFound(t *testing.T) {
	r := NewInMemoryRepository()

	_, err := r.LoadSessionID(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "no remembered game id", err.Error())
}

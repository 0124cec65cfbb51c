package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Write(ctx, "games/abc", map[string]interface{}{
		"status": "waiting",
		"rules":  map[string]interface{}{"slotsPerLane": 18},
	})
	require.NoError(t, err)

	var doc struct {
		Status string `json:"status"`
		Rules  struct {
			SlotsPerLane int `json:"slotsPerLane"`
		} `json:"rules"`
	}
	require.NoError(t, s.Read(ctx, "games/abc", &doc))
	assert.Equal(t, "waiting", doc.Status)
	assert.Equal(t, 18, doc.Rules.SlotsPerLane)

	// Child paths read through the same tree.
	var status string
	require.NoError(t, s.Read(ctx, "games/abc/status", &status))
	assert.Equal(t, "waiting", status)
}

func TestMemoryStoreReadMissing(t *testing.T) {
	s := NewMemoryStore()

	var v interface{}
	err := s.Read(context.Background(), "games/missing", &v)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemoryStoreCreateAllocatesUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.Create(ctx, "games")
	require.NoError(t, err)
	b, err := s.Create(ctx, "games")
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestMemoryStoreSubscribeDeliversInitialValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Write(ctx, "games/abc", map[string]interface{}{"status": "waiting"}))

	var got []json.RawMessage
	cancel, err := s.Subscribe(ctx, "games/abc", func(raw json.RawMessage) {
		got = append(got, raw)
	}, nil)
	require.NoError(t, err)
	defer cancel()

	require.Len(t, got, 1)
	assert.JSONEq(t, `{"status":"waiting"}`, string(got[0]))
}

func TestMemoryStoreSubscribeSeesChildWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Write(ctx, "games/abc", map[string]interface{}{"status": "waiting"}))

	var got []json.RawMessage
	cancel, err := s.Subscribe(ctx, "games/abc", func(raw json.RawMessage) {
		got = append(got, raw)
	}, nil)
	require.NoError(t, err)
	defer cancel()

	// A write below the subscribed path redelivers the whole value.
	require.NoError(t, s.Write(ctx, "games/abc/status", "playing"))

	require.Len(t, got, 2)
	assert.JSONEq(t, `{"status":"playing"}`, string(got[1]))

	// A write elsewhere does not.
	require.NoError(t, s.Write(ctx, "games/other", map[string]interface{}{"status": "waiting"}))
	assert.Len(t, got, 2)
}

func TestMemoryStoreCancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	calls := 0
	cancel, err := s.Subscribe(ctx, "games/abc", func(json.RawMessage) { calls++ }, nil)
	require.NoError(t, err)

	cancel()
	require.NoError(t, s.Write(ctx, "games/abc", map[string]interface{}{"status": "waiting"}))
	assert.Zero(t, calls)
}

func TestMemoryStoreServerTimestampResolves(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.now = func() int64 { return 1234567890 }

	require.NoError(t, s.Write(ctx, "games/abc", map[string]interface{}{
		"createdAt":   s.ServerTimestamp(),
		"lastUpdated": s.ServerTimestamp(),
	}))

	var doc struct {
		CreatedAt   int64 `json:"createdAt"`
		LastUpdated int64 `json:"lastUpdated"`
	}
	require.NoError(t, s.Read(ctx, "games/abc", &doc))
	assert.Equal(t, int64(1234567890), doc.CreatedAt)
	assert.Equal(t, int64(1234567890), doc.LastUpdated)
}

func TestMemoryStoreIndexedWriteIntoArray(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Write(ctx, "games/abc/players", []interface{}{
		map[string]interface{}{"id": "P1", "isComputer": true},
		map[string]interface{}{"id": "P2", "isComputer": true},
	}))

	// Writing at a numeric segment replaces the element, not the array.
	require.NoError(t, s.Write(ctx, "games/abc/players/1", map[string]interface{}{
		"id": "P2", "isComputer": false, "name": "Ada",
	}))

	var players []struct {
		ID         string `json:"id"`
		IsComputer bool   `json:"isComputer"`
		Name       string `json:"name"`
	}
	require.NoError(t, s.Read(ctx, "games/abc/players", &players))
	require.Len(t, players, 2)
	assert.True(t, players[0].IsComputer)
	assert.False(t, players[1].IsComputer)
	assert.Equal(t, "Ada", players[1].Name)
}

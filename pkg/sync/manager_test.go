package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pegwheel/pegwheel/pkg/auth/providers"
	"github.com/pegwheel/pegwheel/pkg/game"
	"github.com/pegwheel/pegwheel/pkg/game/types"
	"github.com/pegwheel/pegwheel/pkg/repositories"
	"github.com/pegwheel/pegwheel/pkg/store"
)

func newTestManager(s store.DocumentStore) (*Manager, *repositories.InMemoryRepository) {
	repository := repositories.NewInMemoryRepository()
	manager := NewManager(NewManagerOptions{
		Store:      s,
		Repository: repository,
		Identity:   providers.Identity{UID: "user-1", DisplayName: "Ada"},
		Session:    game.NewSession(4),
	})
	return manager, repository
}

func TestCreateGameInvalidPlayerCount(t *testing.T) {
	ctx := context.Background()
	manager, repository := newTestManager(store.NewMemoryStore())

	for _, count := range []int{0, 3, 9} {
		_, err := manager.CreateGame(ctx, count)
		require.Error(t, err)
		assert.True(t, IsInvalidPlayerCount(err))
	}

	// Rejected before any state change.
	assert.Equal(t, types.StatusDisconnected, manager.Status())
	assert.Empty(t, manager.GameID())
	_, err := repository.LoadSessionID(ctx, "user-1")
	assert.True(t, repositories.IsNotFound(err))
}

func TestCreateGameWithoutStore(t *testing.T) {
	manager, _ := newTestManager(nil)

	_, err := manager.CreateGame(context.Background(), 4)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, types.StatusError, manager.Status())
}

func TestCreateGame(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	manager, repository := newTestManager(memStore)

	gameID, err := manager.CreateGame(ctx, 4)
	require.NoError(t, err)
	require.NotEmpty(t, gameID)

	assert.Equal(t, types.StatusConnected, manager.Status())
	assert.Equal(t, gameID, manager.GameID())

	var doc types.GameDocument
	require.NoError(t, memStore.Read(ctx, "games/"+gameID, &doc))
	require.Len(t, doc.Players, 4)
	assert.Equal(t, 72, doc.TotalSlots)
	assert.Equal(t, 4, doc.MaxPlayers)
	assert.Equal(t, types.GameStatusWaiting, doc.Status)
	assert.Equal(t, types.Rules{SlotsPerLane: 18, ExactHome: true}, doc.Rules)
	assert.True(t, doc.Participants["user-1"])
	assert.Greater(t, doc.CreatedAt, int64(0))
	assert.Equal(t, doc.CreatedAt, doc.LastUpdated)

	// Seat 0 is bound to the creator, the rest stay computer-controlled.
	assert.False(t, doc.Players[0].IsComputer)
	assert.Equal(t, "user-1", doc.Players[0].AccountID)
	assert.Equal(t, "Ada", doc.Players[0].Name)
	for _, player := range doc.Players[1:] {
		assert.True(t, player.IsComputer)
	}

	// The id is remembered for reconnection.
	saved, err := repository.LoadSessionID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, gameID, saved)

	// The initial snapshot already reconciled into the session.
	assert.Equal(t, "Ada", manager.Session().Players()[0].Name)
}

func TestJoinMissingGame(t *testing.T) {
	ctx := context.Background()
	manager, repository := newTestManager(store.NewMemoryStore())

	err := manager.JoinGame(ctx, "no-such-game")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	// The failure leaves the manager exactly as it was.
	assert.Equal(t, types.StatusDisconnected, manager.Status())
	assert.Empty(t, manager.GameID())
	_, err = repository.LoadSessionID(ctx, "user-1")
	assert.True(t, repositories.IsNotFound(err))
}

func TestJoinMissingGameKeepsLiveConnection(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(store.NewMemoryStore())

	gameID, err := manager.CreateGame(ctx, 4)
	require.NoError(t, err)

	err = manager.JoinGame(ctx, "no-such-game")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	// The existing connection is untouched.
	assert.Equal(t, types.StatusConnected, manager.Status())
	assert.Equal(t, gameID, manager.GameID())
}

func TestJoinGameClaimsFirstComputerSeat(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()

	host, _ := newTestManager(memStore)
	gameID, err := host.CreateGame(ctx, 4)
	require.NoError(t, err)

	repository := repositories.NewInMemoryRepository()
	guest := NewManager(NewManagerOptions{
		Store:      memStore,
		Repository: repository,
		Identity:   providers.Identity{UID: "user-2", DisplayName: "Grace"},
		Session:    game.NewSession(4),
	})

	require.NoError(t, guest.JoinGame(ctx, gameID))
	assert.Equal(t, types.StatusConnected, guest.Status())
	assert.Equal(t, gameID, guest.GameID())

	var doc types.GameDocument
	require.NoError(t, memStore.Read(ctx, "games/"+gameID, &doc))
	assert.True(t, doc.Participants["user-2"])

	// Seat 0 belongs to the host; the guest took seat 1.
	assert.Equal(t, "user-1", doc.Players[0].AccountID)
	assert.False(t, doc.Players[1].IsComputer)
	assert.Equal(t, "user-2", doc.Players[1].AccountID)
	assert.Equal(t, "Grace", doc.Players[1].Name)
	assert.True(t, doc.Players[2].IsComputer)

	saved, err := repository.LoadSessionID(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, gameID, saved)
}

func TestMovePushesStateAndMoveLog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	memStore := store.NewMemoryStore()
	manager, _ := newTestManager(memStore)
	manager.Start(ctx)
	defer manager.Close()

	gameID, err := manager.CreateGame(ctx, 4)
	require.NoError(t, err)

	session := manager.Session()
	session.SelectPeg("P1", "R2")
	session.MoveSelectedPegTo(types.AtSlot(42))

	assert.Eventually(t, func() bool {
		var players []*types.Player
		if err := memStore.Read(ctx, "games/"+gameID+"/players", &players); err != nil {
			return false
		}
		peg := players[0].FindPeg("R2")
		if peg == nil {
			return false
		}
		slot, ok := peg.Position.Slot()
		return ok && slot == 42
	}, 2*time.Second, 10*time.Millisecond, "peg move never reached the store")

	assert.Eventually(t, func() bool {
		var moves map[string]types.MoveLogEntry
		if err := memStore.Read(ctx, "games/"+gameID+"/moves", &moves); err != nil {
			return false
		}
		for _, entry := range moves {
			if entry.PlayerID == "P1" && entry.PegID == "R2" {
				// The placeholder resolved to a concrete server time.
				_, isNumber := entry.Timestamp.(float64)
				return isNumber
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond, "move log entry never reached the store")
}

// ctxBoundStore delivers subscription callbacks only while the context
// passed to Subscribe is live, like a store whose listener goroutine is
// tied to that context.
type ctxBoundStore struct {
	*store.MemoryStore
}

func (s *ctxBoundStore) Subscribe(ctx context.Context, path string, onValue func(json.RawMessage), onError func(error)) (func(), error) {
	gated := func(raw json.RawMessage) {
		if ctx.Err() != nil {
			return
		}
		onValue(raw)
	}
	return s.MemoryStore.Subscribe(ctx, path, gated, onError)
}

func TestSubscriptionOutlivesCallerContext(t *testing.T) {
	memStore := store.NewMemoryStore()
	manager := NewManager(NewManagerOptions{
		Store:      &ctxBoundStore{memStore},
		Repository: repositories.NewInMemoryRepository(),
		Identity:   providers.Identity{UID: "user-1", DisplayName: "Ada"},
		Session:    game.NewSession(4),
	})

	// The create arrives on a short-lived context, as from an HTTP
	// request that ends as soon as the handler returns.
	reqCtx, cancel := context.WithCancel(context.Background())
	gameID, err := manager.CreateGame(reqCtx, 4)
	require.NoError(t, err)
	cancel()

	// A remote write after the request ended must still reconcile.
	remote := game.DefaultRoster(4, 18)
	remote[1].Pegs[0].Position = types.AtSlot(25)
	require.NoError(t, memStore.Write(context.Background(), "games/"+gameID+"/players", remote))

	peg := manager.Session().Players()[1].FindPeg("B1")
	require.NotNil(t, peg)
	assert.Equal(t, types.AtSlot(25), peg.Position)
	assert.Equal(t, types.StatusConnected, manager.Status())

	// Leaving is still the one thing that ends delivery.
	manager.LeaveGame(context.Background())
	require.NoError(t, memStore.Write(context.Background(), "games/"+gameID+"/status", types.GameStatusPlaying))
	assert.Len(t, manager.Session().Players(), 4)
	for _, player := range manager.Session().Players() {
		assert.True(t, player.IsComputer)
	}
}

func TestRemoteSnapshotReconciles(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	manager, _ := newTestManager(memStore)

	gameID, err := manager.CreateGame(ctx, 4)
	require.NoError(t, err)

	// A remote peer moves a peg by writing the roster directly.
	remote := game.DefaultRoster(4, 18)
	remote[1].Pegs[0].Position = types.AtSlot(25)
	require.NoError(t, memStore.Write(ctx, "games/"+gameID+"/players", remote))

	peg := manager.Session().Players()[1].FindPeg("B1")
	require.NotNil(t, peg)
	assert.Equal(t, types.AtSlot(25), peg.Position)
}

func TestRemoteSnapshotKeepsSelection(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	manager, _ := newTestManager(memStore)

	gameID, err := manager.CreateGame(ctx, 4)
	require.NoError(t, err)

	session := manager.Session()
	session.SelectPeg("P1", "R1")

	require.NoError(t, memStore.Write(ctx, "games/"+gameID+"/lastUpdated", memStore.ServerTimestamp()))

	assert.Equal(t, &types.PegRef{PlayerID: "P1", PegID: "R1"}, session.SelectedPeg())
}

func TestLeaveGame(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	manager, repository := newTestManager(memStore)

	gameID, err := manager.CreateGame(ctx, 5)
	require.NoError(t, err)
	require.Len(t, manager.Session().Players(), 5)

	manager.LeaveGame(ctx)

	assert.Equal(t, types.StatusDisconnected, manager.Status())
	assert.Empty(t, manager.GameID())
	_, err = repository.LoadSessionID(ctx, "user-1")
	assert.True(t, repositories.IsNotFound(err))

	// The session is back to a fresh local default.
	players := manager.Session().Players()
	require.Len(t, players, 4)
	for _, player := range players {
		assert.True(t, player.IsComputer)
		for _, peg := range player.Pegs {
			assert.True(t, peg.Position.IsHome())
		}
	}

	// Writes to the old game no longer reach the session.
	require.NoError(t, memStore.Write(ctx, "games/"+gameID+"/status", types.GameStatusPlaying))
	assert.Len(t, manager.Session().Players(), 4)
}

func TestReconnectJoinsRememberedGame(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()

	host, repository := newTestManager(memStore)
	gameID, err := host.CreateGame(ctx, 4)
	require.NoError(t, err)

	// A second manager with the same repository models a restart.
	restarted := NewManager(NewManagerOptions{
		Store:      memStore,
		Repository: repository,
		Identity:   providers.Identity{UID: "user-1", DisplayName: "Ada"},
		Session:    game.NewSession(4),
	})

	require.NoError(t, restarted.Reconnect(ctx))
	assert.Equal(t, types.StatusConnected, restarted.Status())
	assert.Equal(t, gameID, restarted.GameID())
}

func TestReconnectClearsStaleGameID(t *testing.T) {
	ctx := context.Background()
	manager, repository := newTestManager(store.NewMemoryStore())
	require.NoError(t, repository.SaveSessionID(ctx, "user-1", "gone"))

	err := manager.Reconnect(ctx)
	require.Error(t, err)

	_, err = repository.LoadSessionID(ctx, "user-1")
	assert.True(t, repositories.IsNotFound(err))
}

func TestReconnectWithNothingRemembered(t *testing.T) {
	manager, _ := newTestManager(store.NewMemoryStore())
	assert.NoError(t, manager.Reconnect(context.Background()))
	assert.Equal(t, types.StatusDisconnected, manager.Status())
}

func TestManagerStartAndCloseFromDifferentGoroutines(t *testing.T) {
	manager, _ := newTestManager(store.NewMemoryStore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{}, 2)
	go func() {
		manager.Start(ctx)
		done <- struct{}{}
	}()
	go func() {
		manager.Close()
		done <- struct{}{}
	}()
	<-done
	<-done

	// A second Close reaps the worker if the first one raced ahead of
	// Start, and is a no-op otherwise.
	manager.Close()
}

func TestGetUserGames(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	manager, _ := newTestManager(memStore)

	write := func(id string, createdAt int64, participants map[string]bool, status types.GameStatus) {
		doc := &types.GameDocument{
			Rules:        types.Rules{SlotsPerLane: 18, ExactHome: true},
			TotalSlots:   72,
			Players:      game.DefaultRoster(4, 18),
			CreatedAt:    createdAt,
			LastUpdated:  createdAt,
			Status:       status,
			Participants: participants,
			MaxPlayers:   4,
		}
		require.NoError(t, memStore.Write(ctx, "games/"+id, doc))
	}

	write("old", 100, map[string]bool{"user-1": true}, types.GameStatusFinished)
	write("new", 300, map[string]bool{"user-1": true, "user-2": true}, types.GameStatusWaiting)
	write("other", 200, map[string]bool{"user-2": true}, types.GameStatusPlaying)

	games, err := manager.GetUserGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)

	// Newest first; games without the caller are filtered out.
	assert.Equal(t, "new", games[0].ID)
	assert.Equal(t, int64(300), games[0].CreatedAt)
	assert.Equal(t, 4, games[0].PlayerCount)
	assert.Equal(t, "old", games[1].ID)
}

func TestGetUserGamesEmptyStore(t *testing.T) {
	manager, _ := newTestManager(store.NewMemoryStore())

	games, err := manager.GetUserGames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, games)
}

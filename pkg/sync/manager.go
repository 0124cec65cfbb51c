package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	gosync "sync"

	"github.com/pegwheel/pegwheel/pkg/auth/providers"
	"github.com/pegwheel/pegwheel/pkg/game"
	"github.com/pegwheel/pegwheel/pkg/game/constants"
	"github.com/pegwheel/pegwheel/pkg/game/types"
	"github.com/pegwheel/pegwheel/pkg/log"
	"github.com/pegwheel/pegwheel/pkg/queue"
	"github.com/pegwheel/pegwheel/pkg/repositories"
	"github.com/pegwheel/pegwheel/pkg/store"
	"github.com/pegwheel/pegwheel/pkg/workers"
)

const (
	gamesPath      = "games"
	syncQueueSize  = 1024
	movesChildPath = "moves"
)

// Manager is the synchronization engine: it bridges the local session
// to the shared document store, owns exactly one live subscription at a
// time, and mirrors local mutations outward through a background
// worker. It is an explicit object with a Start/Close lifecycle; no
// package-level state.
type Manager struct {
	store      store.DocumentStore
	repository repositories.Repository
	identity   providers.Identity
	session    *game.Session
	reconciler Reconciler

	syncQueue queue.Queue
	wake      chan struct{}

	mu           gosync.Mutex
	gameID       string
	status       types.ConnectionStatus
	unsubscribe  func()
	cancelWorker context.CancelFunc
	workerDone   chan struct{}
}

type NewManagerOptions struct {
	// Store may be nil; remote operations then fail with
	// ErrStoreUnavailable.
	Store      store.DocumentStore
	Repository repositories.Repository
	Identity   providers.Identity
	Session    *game.Session
	// Reconciler defaults to LastWriterWins.
	Reconciler Reconciler
}

func NewManager(opts NewManagerOptions) *Manager {
	reconciler := opts.Reconciler
	if reconciler == nil {
		reconciler = LastWriterWins{}
	}
	return &Manager{
		store:      opts.Store,
		repository: opts.Repository,
		identity:   opts.Identity,
		session:    opts.Session,
		reconciler: reconciler,
		syncQueue:  queue.NewInMemoryQueue(syncQueueSize),
		wake:       make(chan struct{}, 1),
		status:     types.StatusDisconnected,
	}
}

// Start launches the push worker and attempts reconnection to the
// remembered game, if any.
func (m *Manager) Start(ctx context.Context) {
	if m.store != nil {
		workerCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		m.mu.Lock()
		m.cancelWorker = cancel
		m.workerDone = done
		m.mu.Unlock()

		worker := workers.NewSyncWorker(workers.NewSyncWorkerOptions{
			Store: m.store,
			Queue: m.syncQueue,
			Wake:  m.wake,
		})
		go func() {
			defer close(done)
			worker.Start(workerCtx)
		}()
	}

	if err := m.Reconnect(ctx); err != nil {
		log.Warn("Reconnect failed: %v", err)
	}
}

// Close tears down the subscription and the push worker. In-flight
// pushes are not awaited.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	cancelWorker := m.cancelWorker
	workerDone := m.workerDone
	m.cancelWorker = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancelWorker != nil {
		cancelWorker()
		<-workerDone
	}
}

func (m *Manager) GameID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameID
}

func (m *Manager) Status() types.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) Session() *game.Session {
	return m.session
}

// CreateGame creates a fresh shared game with playerCount seats, binds
// seat 0 to the caller, persists the id for reconnection, and
// subscribes. Returns the new game id.
func (m *Manager) CreateGame(ctx context.Context, playerCount int) (string, error) {
	if playerCount < constants.MinOnlinePlayers || playerCount > constants.MaxPlayers {
		// Rejected locally; no store call, connection state untouched.
		return "", &ErrInvalidPlayerCount{Count: playerCount}
	}
	if m.store == nil {
		m.setStatus(types.StatusError)
		return "", ErrStoreUnavailable
	}

	m.setStatus(types.StatusConnecting)

	gameID, err := m.store.Create(ctx, gamesPath)
	if err != nil {
		m.setStatus(types.StatusError)
		return "", fmt.Errorf("failed to allocate game id: %v", err)
	}

	roster := game.DefaultRoster(playerCount, constants.SlotsPerLane)
	m.bindSeat(roster[0])

	doc := &types.GameDocument{
		Rules: types.Rules{
			SlotsPerLane: constants.SlotsPerLane,
			ExactHome:    constants.DefaultExactHome,
		},
		TotalSlots:   playerCount * constants.SlotsPerLane,
		Players:      roster,
		CurrentTurn:  0,
		Status:       types.GameStatusWaiting,
		Participants: map[string]bool{m.identity.UID: true},
		MaxPlayers:   playerCount,
	}

	value, err := documentValue(doc, m.store.ServerTimestamp())
	if err != nil {
		m.setStatus(types.StatusError)
		return "", err
	}
	if err := m.store.Write(ctx, gamePath(gameID), value); err != nil {
		m.setStatus(types.StatusError)
		return "", fmt.Errorf("failed to write game document: %v", err)
	}

	if err := m.repository.SaveSessionID(ctx, m.identity.UID, gameID); err != nil {
		log.Warn("Failed to remember game id: %v", err)
	}

	if err := m.subscribe(gameID); err != nil {
		m.setStatus(types.StatusError)
		return "", err
	}

	m.session.SetPublisher(m)
	m.setStatus(types.StatusConnected)
	log.Info("Created game %s with %d seats", gameID, playerCount)
	return gameID, nil
}

// JoinGame subscribes to an existing game and claims the first
// computer-controlled seat for the caller, if one is free. A join on a
// nonexistent game fails before any connection-state mutation.
func (m *Manager) JoinGame(ctx context.Context, gameID string) error {
	if m.store == nil {
		m.setStatus(types.StatusError)
		return ErrStoreUnavailable
	}

	var doc types.GameDocument
	if err := m.store.Read(ctx, gamePath(gameID), &doc); err != nil {
		if store.IsNotFound(err) {
			// Fail fast; the previous session, if any, stays intact.
			return err
		}
		m.setStatus(types.StatusError)
		return fmt.Errorf("failed to read game document: %v", err)
	}

	m.setStatus(types.StatusConnecting)

	if err := m.subscribe(gameID); err != nil {
		m.setStatus(types.StatusError)
		return err
	}

	// Participant record and seat claim are direct writes, independent
	// of the subscription push path.
	participantPath := fmt.Sprintf("%s/participants/%s", gamePath(gameID), m.identity.UID)
	if err := m.store.Write(ctx, participantPath, true); err != nil {
		log.Warn("Failed to record participant: %v", err)
	}

	m.claimSeat(ctx, gameID, doc.Players)

	if err := m.repository.SaveSessionID(ctx, m.identity.UID, gameID); err != nil {
		log.Warn("Failed to remember game id: %v", err)
	}

	m.session.SetPublisher(m)
	m.setStatus(types.StatusConnected)
	log.Info("Joined game %s", gameID)
	return nil
}

// LeaveGame tears down the subscription, forgets the remembered game
// id, and resets the session to a fresh local default. The participant
// record is not retracted.
func (m *Manager) LeaveGame(ctx context.Context) {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.gameID = ""
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	if err := m.repository.ClearSessionID(ctx, m.identity.UID); err != nil {
		log.Warn("Failed to clear remembered game id: %v", err)
	}

	m.session.SetPublisher(nil)
	m.session.ResetToDefault(constants.DefaultPlayers)
	m.setStatus(types.StatusDisconnected)
}

// UserGame is one entry of the caller's game listing.
type UserGame struct {
	ID          string           `json:"id"`
	CreatedAt   int64            `json:"createdAt"`
	Status      types.GameStatus `json:"status"`
	PlayerCount int              `json:"playerCount"`
	MaxPlayers  int              `json:"maxPlayers"`
}

// GetUserGames lists the games whose participant set includes the
// caller, newest first.
func (m *Manager) GetUserGames(ctx context.Context) ([]UserGame, error) {
	if m.store == nil {
		return nil, ErrStoreUnavailable
	}

	all := make(map[string]types.GameDocument)
	if err := m.store.Read(ctx, gamesPath, &all); err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list games: %v", err)
	}

	var userGames []UserGame
	for id, doc := range all {
		if !doc.Participants[m.identity.UID] {
			continue
		}
		userGames = append(userGames, UserGame{
			ID:          id,
			CreatedAt:   doc.CreatedAt,
			Status:      doc.Status,
			PlayerCount: len(doc.Players),
			MaxPlayers:  doc.MaxPlayers,
		})
	}

	sort.Slice(userGames, func(i, j int) bool {
		return userGames[i].CreatedAt > userGames[j].CreatedAt
	})
	return userGames, nil
}

// Reconnect joins the remembered game, if any. A failed reconnect
// clears the remembered id as stale.
func (m *Manager) Reconnect(ctx context.Context) error {
	if m.Status() != types.StatusDisconnected {
		return nil
	}

	gameID, err := m.repository.LoadSessionID(ctx, m.identity.UID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to load remembered game id: %v", err)
	}

	if err := m.JoinGame(ctx, gameID); err != nil {
		if clearErr := m.repository.ClearSessionID(ctx, m.identity.UID); clearErr != nil {
			log.Warn("Failed to clear stale game id: %v", clearErr)
		}
		return fmt.Errorf("failed to rejoin game %s: %v", gameID, err)
	}
	return nil
}

// PublishState implements game.MovePublisher. The push is queued; the
// local mutation is already visible.
func (m *Manager) PublishState(players []*types.Player) {
	gameID := m.GameID()
	if gameID == "" {
		return
	}
	m.enqueue(workers.WriteRequest{
		Path:  gamePath(gameID) + "/players",
		Value: players,
	})
	m.enqueue(workers.WriteRequest{
		Path:  gamePath(gameID) + "/lastUpdated",
		Value: m.store.ServerTimestamp(),
	})
}

// AppendMove implements game.MovePublisher.
func (m *Manager) AppendMove(entry types.MoveLogEntry) {
	gameID := m.GameID()
	if gameID == "" {
		return
	}
	entry.Timestamp = m.store.ServerTimestamp()
	m.enqueue(workers.WriteRequest{
		Path:   gamePath(gameID) + "/" + movesChildPath,
		Value:  entry,
		Append: true,
	})
}

func (m *Manager) enqueue(req workers.WriteRequest) {
	if err := m.syncQueue.Enqueue(req); err != nil {
		log.Error("Failed to enqueue push for %s: %v", req.Path, err)
		return
	}
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// subscribe registers the single live value listener. Establishing a
// new subscription assumes any prior one was released by LeaveGame.
// The subscription runs on a manager-owned context, never the
// caller's: a join arriving on an HTTP request must keep mirroring
// remote state long after the request ends. Only LeaveGame or Close
// end it.
func (m *Manager) subscribe(gameID string) error {
	subCtx, subCancel := context.WithCancel(context.Background())
	cancel, err := m.store.Subscribe(subCtx, gamePath(gameID), m.onSnapshot, m.onSubscribeError)
	if err != nil {
		subCancel()
		return fmt.Errorf("failed to subscribe to game %s: %v", gameID, err)
	}

	m.mu.Lock()
	m.gameID = gameID
	m.unsubscribe = func() {
		subCancel()
		cancel()
	}
	m.mu.Unlock()
	return nil
}

// onSnapshot applies an inbound remote snapshot in delivery order. The
// local selection cursor survives every snapshot.
func (m *Manager) onSnapshot(raw json.RawMessage) {
	var doc types.GameDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Error("Failed to decode game snapshot: %v", err)
		return
	}
	m.reconciler.Reconcile(m.session, &doc)
}

func (m *Manager) onSubscribeError(err error) {
	log.Warn("Subscription error: %v", err)
}

func (m *Manager) setStatus(status types.ConnectionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// bindSeat rebinds a computer seat to the caller identity.
func (m *Manager) bindSeat(player *types.Player) {
	player.IsComputer = false
	player.AccountID = m.identity.UID
	if m.identity.DisplayName != "" {
		player.Name = m.identity.DisplayName
	}
}

// claimSeat rewrites the first computer-controlled roster slot for the
// caller. Two callers racing for the same last slot are not arbitrated
// here.
func (m *Manager) claimSeat(ctx context.Context, gameID string, players []*types.Player) {
	for i, player := range players {
		if !player.IsComputer {
			continue
		}
		claimed := player.Copy()
		m.bindSeat(claimed)
		seatPath := fmt.Sprintf("%s/players/%d", gamePath(gameID), i)
		if err := m.store.Write(ctx, seatPath, claimed); err != nil {
			log.Warn("Failed to claim seat %d: %v", i, err)
		}
		return
	}
}

func gamePath(gameID string) string {
	return gamesPath + "/" + gameID
}

// documentValue converts the document to a write value with
// server-timestamp placeholders for createdAt and lastUpdated.
func documentValue(doc *types.GameDocument, timestamp interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game document: %v", err)
	}
	var value map[string]interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode game document: %v", err)
	}
	value["createdAt"] = timestamp
	value["lastUpdated"] = timestamp
	return value, nil
}

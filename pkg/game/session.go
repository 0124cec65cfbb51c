package game

import (
	"sync"

	"github.com/pegwheel/pegwheel/pkg/game/constants"
	"github.com/pegwheel/pegwheel/pkg/game/types"
)

// MovePublisher mirrors successful local mutations outward. The sync
// engine is the production implementation; a nil publisher means the
// session is local-only.
type MovePublisher interface {
	// PublishState pushes the full players array.
	PublishState(players []*types.Player)
	// AppendMove appends one move-log entry.
	AppendMove(entry types.MoveLogEntry)
}

// Session is the canonical in-memory game state. All mutation entry
// points are synchronous; the selection cursor is local-only UI state
// and never crosses the store boundary in either direction.
type Session struct {
	mu          sync.RWMutex
	players     []*types.Player
	rules       types.Rules
	totalSlots  int
	selectedPeg *types.PegRef
	publisher   MovePublisher
}

// NewSession creates a local session with the default all-computer
// roster. The player count is clamped to [MinPlayers, MaxPlayers].
func NewSession(playerCount int) *Session {
	if playerCount < constants.MinPlayers {
		playerCount = constants.MinPlayers
	}
	if playerCount > constants.MaxPlayers {
		playerCount = constants.MaxPlayers
	}

	rules := types.Rules{
		SlotsPerLane: constants.SlotsPerLane,
		ExactHome:    constants.DefaultExactHome,
	}

	return &Session{
		players:    DefaultRoster(playerCount, rules.SlotsPerLane),
		rules:      rules,
		totalSlots: playerCount * rules.SlotsPerLane,
	}
}

// DefaultRoster builds playerCount computer-controlled players from the
// palette, every peg in the home area.
func DefaultRoster(playerCount, slotsPerLane int) []*types.Player {
	players := make([]*types.Player, playerCount)
	for i := range players {
		def := constants.Palette[i]
		players[i] = types.NewPlayer(i, slotsPerLane, def.Name, def.Color)
	}
	return players
}

// SetPublisher attaches or detaches (nil) the outbound publisher.
func (s *Session) SetPublisher(p MovePublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// Players returns a deep copy of the roster.
func (s *Session) Players() []*types.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.CopyPlayers(s.players)
}

func (s *Session) Rules() types.Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

func (s *Session) TotalSlots() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalSlots
}

// SelectedPeg returns the selection cursor, or nil.
func (s *Session) SelectedPeg() *types.PegRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedPeg == nil {
		return nil
	}
	ref := *s.selectedPeg
	return &ref
}

// Snapshot is the read-only view handed to the UI boundary.
type Snapshot struct {
	Players     []*types.Player `json:"players"`
	Rules       types.Rules     `json:"rules"`
	TotalSlots  int             `json:"totalSlots"`
	SelectedPeg *types.PegRef   `json:"selectedPeg"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sel *types.PegRef
	if s.selectedPeg != nil {
		ref := *s.selectedPeg
		sel = &ref
	}
	return Snapshot{
		Players:     types.CopyPlayers(s.players),
		Rules:       s.rules,
		TotalSlots:  s.totalSlots,
		SelectedPeg: sel,
	}
}

// SelectPeg unconditionally overwrites the selection cursor. The
// referenced peg is not required to exist; selecting a missing peg just
// makes subsequent moves a no-op.
func (s *Session) SelectPeg(playerID, pegID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedPeg = &types.PegRef{PlayerID: playerID, PegID: pegID}
}

// MoveSelectedPegTo moves the selected peg to target. No selection, or
// a selection referencing a missing player or peg, is silently ignored;
// in the missing-entity case the selection is retained. On success the
// move is applied optimistically, the selection is cleared, and the new
// roster plus one move-log entry are published when a publisher is
// attached. No legality checking is performed.
func (s *Session) MoveSelectedPegTo(target types.PegPosition) {
	s.mu.Lock()
	sel := s.selectedPeg
	if sel == nil {
		s.mu.Unlock()
		return
	}

	player := s.findPlayer(sel.PlayerID)
	if player == nil {
		s.mu.Unlock()
		return
	}
	peg := player.FindPeg(sel.PegID)
	if peg == nil {
		s.mu.Unlock()
		return
	}

	peg.Position = target
	entry := types.MoveLogEntry{
		PlayerID:    sel.PlayerID,
		PegID:       sel.PegID,
		NewPosition: target,
	}
	s.selectedPeg = nil

	publisher := s.publisher
	var roster []*types.Player
	if publisher != nil {
		roster = types.CopyPlayers(s.players)
	}
	s.mu.Unlock()

	if publisher != nil {
		publisher.PublishState(roster)
		publisher.AppendMove(entry)
	}
}

// AddPlayer appends the next palette player. No-op at MaxPlayers.
func (s *Session) AddPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) >= constants.MaxPlayers {
		return
	}
	ordinal := len(s.players)
	def := constants.Palette[ordinal]
	s.players = append(s.players, types.NewPlayer(ordinal, s.rules.SlotsPerLane, def.Name, def.Color))
	s.totalSlots = len(s.players) * s.rules.SlotsPerLane
}

// RemovePlayer removes the last player. No-op at MinPlayers. Any live
// selection is cleared since its target player may have been removed.
func (s *Session) RemovePlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) <= constants.MinPlayers {
		return
	}
	s.players = s.players[:len(s.players)-1]
	s.totalSlots = len(s.players) * s.rules.SlotsPerLane
	s.selectedPeg = nil
}

// ResetGame forces every peg back to the home area and clears the
// selection. The roster and rules are untouched.
func (s *Session) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, player := range s.players {
		for i := range player.Pegs {
			player.Pegs[i].Position = types.Home()
		}
	}
	s.selectedPeg = nil
}

// ResetToDefault replaces the whole session with a fresh local
// all-computer roster, default rules, and no selection. Used when
// leaving a shared game.
func (s *Session) ResetToDefault(playerCount int) {
	if playerCount < constants.MinPlayers {
		playerCount = constants.MinPlayers
	}
	if playerCount > constants.MaxPlayers {
		playerCount = constants.MaxPlayers
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = types.Rules{
		SlotsPerLane: constants.SlotsPerLane,
		ExactHome:    constants.DefaultExactHome,
	}
	s.players = DefaultRoster(playerCount, s.rules.SlotsPerLane)
	s.totalSlots = playerCount * s.rules.SlotsPerLane
	s.selectedPeg = nil
}

// Overwrite replaces players, rules, and totalSlots wholesale. The
// selection cursor survives. This is the reconciliation entry point for
// inbound remote snapshots; there is no field-level merge.
func (s *Session) Overwrite(players []*types.Player, rules types.Rules, totalSlots int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = players
	s.rules = rules
	s.totalSlots = totalSlots
}

func (s *Session) findPlayer(id string) *types.Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

package types

import (
	"fmt"

	"github.com/pegwheel/pegwheel/pkg/game/constants"
)

// Player is one seat at the table. Players are only ever constructed
// whole, at game creation or roster-change time.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	StartIndex int    `json:"startIndex"`
	// HomeEntryIndex and SafeEntryIndex name the same main-track slot,
	// the one adjacent to this player's safe-lane entrance. Both are
	// carried so the persisted document keeps its historical field.
	HomeEntryIndex int    `json:"homeEntryIndex"`
	SafeEntryIndex int    `json:"safeEntryIndex"`
	IsComputer     bool   `json:"isComputer"`
	AccountID      string `json:"accountId,omitempty"`
	Pegs           []Peg  `json:"pegs"`
}

// NewPlayer builds the player for seat ordinal (0-based) with all pegs
// in the home area. StartIndex is 1-based: ordinal*slotsPerLane + 1.
func NewPlayer(ordinal, slotsPerLane int, name, color string) *Player {
	startIndex := ordinal*slotsPerLane + 1
	entryIndex := startIndex + constants.SafeEntryOffset

	pegs := make([]Peg, constants.PegsPerPlayer)
	for i := range pegs {
		pegs[i] = Peg{
			ID:       fmt.Sprintf("%c%d", name[0], i+1),
			Position: Home(),
		}
	}

	return &Player{
		ID:             fmt.Sprintf("P%d", ordinal+1),
		Name:           name,
		Color:          color,
		StartIndex:     startIndex,
		HomeEntryIndex: entryIndex,
		SafeEntryIndex: entryIndex,
		IsComputer:     true,
		Pegs:           pegs,
	}
}

// FindPeg returns the peg with the given id, or nil.
func (p *Player) FindPeg(pegID string) *Peg {
	for i := range p.Pegs {
		if p.Pegs[i].ID == pegID {
			return &p.Pegs[i]
		}
	}
	return nil
}

func (p *Player) Copy() *Player {
	pegs := make([]Peg, len(p.Pegs))
	copy(pegs, p.Pegs)
	clone := *p
	clone.Pegs = pegs
	return &clone
}

// CopyPlayers deep-copies a roster.
func CopyPlayers(players []*Player) []*Player {
	out := make([]*Player, len(players))
	for i, p := range players {
		out[i] = p.Copy()
	}
	return out
}

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type positionKind int

const (
	kindHome positionKind = iota
	kindSafe
	kindSlot
)

// PegPosition is a peg's location: a 1-based main-track slot index, the
// home area, or the private safe lane. The slot-level detail inside the
// safe lane is not tracked. The zero value is the home area.
type PegPosition struct {
	kind positionKind
	slot int
}

func Home() PegPosition {
	return PegPosition{kind: kindHome}
}

func Safe() PegPosition {
	return PegPosition{kind: kindSafe}
}

func AtSlot(index int) PegPosition {
	return PegPosition{kind: kindSlot, slot: index}
}

func (p PegPosition) IsHome() bool {
	return p.kind == kindHome
}

func (p PegPosition) IsSafe() bool {
	return p.kind == kindSafe
}

// Slot returns the main-track slot index, or false if the peg is not on
// the main track.
func (p PegPosition) Slot() (int, bool) {
	if p.kind != kindSlot {
		return 0, false
	}
	return p.slot, true
}

func (p PegPosition) String() string {
	switch p.kind {
	case kindHome:
		return "HOME"
	case kindSafe:
		return "SAFE"
	default:
		return strconv.Itoa(p.slot)
	}
}

// MarshalJSON encodes the position as a bare slot number or the string
// "HOME"/"SAFE", matching the persisted document format.
func (p PegPosition) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case kindHome:
		return json.Marshal("HOME")
	case kindSafe:
		return json.Marshal("SAFE")
	default:
		return json.Marshal(p.slot)
	}
}

// UnmarshalJSON decodes a bare number or "HOME"/"SAFE".
func (p *PegPosition) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch s {
		case "HOME":
			*p = Home()
			return nil
		case "SAFE":
			*p = Safe()
			return nil
		default:
			return fmt.Errorf("invalid peg position %q", s)
		}
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid peg position literal %s (want a slot number, \"HOME\" or \"SAFE\")", string(b))
	}
	*p = AtSlot(n)
	return nil
}

// Peg belongs to exactly one player. The ID is derived from the owning
// player's initial and the peg ordinal, e.g. "R1".
type Peg struct {
	ID       string      `json:"pegId"`
	Position PegPosition `json:"pos"`
}

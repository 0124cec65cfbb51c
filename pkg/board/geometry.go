package board

// Pure track geometry. Positions for every main-track slot, home cell,
// and safe cell are derived from the player count and a radius alone,
// so the same functions serve any roster size in range.

import (
	"math"
)

const (
	// SlotsPerSide is the number of main-track slots on each player's
	// side of the polygon.
	SlotsPerSide = 18

	// CellsPerGroup is the number of cells in a home or safe group.
	CellsPerGroup = 5

	// RotationOffset rotates the polygon so that slot 0 sits at the top.
	RotationOffset = -math.Pi / 2

	// Home and safe groups anchor at a fixed slot offset along the side.
	homeAnchorSlot = 9
	safeAnchorSlot = 4

	// Inward displacement of the group base cell, in spacing units.
	homeInsetCells = 3.0
	safeInsetCells = 2.0
)

type Point struct {
	X float64
	Y float64
}

// Slot is a single main-track position. Index is 1-based.
type Slot struct {
	X          float64
	Y          float64
	Index      int
	PlayerLane int
}

// CellGroup is one player's home or safe cells.
type CellGroup struct {
	Positions   []Point
	PlayerIndex int
}

type Layout struct {
	MainTrack []Slot
	Homes     []CellGroup
	Safes     []CellGroup
}

// PolarToXY converts a polar offset from (cx, cy) to Cartesian coordinates.
func PolarToXY(cx, cy, r, angle float64) Point {
	return Point{
		X: cx + r*math.Cos(angle),
		Y: cy + r*math.Sin(angle),
	}
}

// SlotAngle maps a 0-based slot index to its angle around a full circle,
// rotated so index 0 sits at the top. Periodic: SlotAngle(i+total, total)
// equals SlotAngle(i, total) exactly.
func SlotAngle(index, total int) float64 {
	return SlotAngleRotated(index, total, RotationOffset)
}

// SlotAngleRotated is SlotAngle with an explicit rotation offset.
func SlotAngleRotated(index, total int, rotation float64) float64 {
	i := index % total
	if i < 0 {
		i += total
	}
	return float64(i)/float64(total)*2*math.Pi + rotation
}

// NgonSlotPosition places a main-track slot on a regular polygon with
// one side per player. Consecutive slots on a side are evenly spaced
// along the straight edge. The first slot of a side is adjacent to, not
// coincident with, the last slot of the previous side.
func NgonSlotPosition(index, totalSlots, playerCount int, cx, cy, r float64) Point {
	slotsPerSide := totalSlots / playerCount
	side := index / slotsPerSide
	t := float64(index%slotsPerSide) / float64(slotsPerSide)

	c0 := PolarToXY(cx, cy, r, SlotAngle(side, playerCount))
	c1 := PolarToXY(cx, cy, r, SlotAngle(side+1, playerCount))
	return lerp(c0, c1, t)
}

// HomePositions returns the 5 home cells for a player, arranged as a
// plus: one center cell with four neighbors along the inward normal and
// its perpendicular. The shape scales with spacing only, never with
// player count.
func HomePositions(playerIndex, playerCount int, cx, cy, r, spacing float64) []Point {
	anchor, tangent, normal := sideFrame(playerIndex, playerCount, cx, cy, r, homeAnchorSlot)
	center := translate(anchor, normal, homeInsetCells*spacing)
	return []Point{
		center,
		translate(center, normal, spacing),
		translate(center, normal, -spacing),
		translate(center, tangent, spacing),
		translate(center, tangent, -spacing),
	}
}

// SafePositions returns the 5 safe-lane cells for a player, arranged as
// an L: a straight run of three cells along the inward normal, then two
// more turning along the edge tangent.
func SafePositions(playerIndex, playerCount int, cx, cy, r, spacing float64) []Point {
	anchor, tangent, normal := sideFrame(playerIndex, playerCount, cx, cy, r, safeAnchorSlot)
	base := translate(anchor, normal, safeInsetCells*spacing)
	elbow := translate(base, normal, 2*spacing)
	return []Point{
		base,
		translate(base, normal, spacing),
		elbow,
		translate(elbow, tangent, spacing),
		translate(elbow, tangent, 2*spacing),
	}
}

// TrackLayout composes the full board: every main-track slot (1-based
// index) plus each player's home and safe groups. This is the only
// entry point callers need.
func TrackLayout(playerCount int, cx, cy, r, spacing float64) Layout {
	totalSlots := playerCount * SlotsPerSide

	layout := Layout{
		MainTrack: make([]Slot, 0, totalSlots),
		Homes:     make([]CellGroup, 0, playerCount),
		Safes:     make([]CellGroup, 0, playerCount),
	}

	for i := 0; i < totalSlots; i++ {
		p := NgonSlotPosition(i, totalSlots, playerCount, cx, cy, r)
		layout.MainTrack = append(layout.MainTrack, Slot{
			X:          p.X,
			Y:          p.Y,
			Index:      i + 1,
			PlayerLane: i / SlotsPerSide,
		})
	}

	for p := 0; p < playerCount; p++ {
		layout.Homes = append(layout.Homes, CellGroup{
			Positions:   HomePositions(p, playerCount, cx, cy, r, spacing),
			PlayerIndex: p,
		})
		layout.Safes = append(layout.Safes, CellGroup{
			Positions:   SafePositions(p, playerCount, cx, cy, r, spacing),
			PlayerIndex: p,
		})
	}

	return layout
}

// sideFrame anchors a point at a fixed fractional offset along a
// player's polygon side and returns the side's unit tangent and its
// inward unit normal. The normal sign is corrected so it always points
// toward the polygon centroid.
func sideFrame(playerIndex, playerCount int, cx, cy, r float64, anchorSlot int) (anchor, tangent, normal Point) {
	c0 := PolarToXY(cx, cy, r, SlotAngle(playerIndex, playerCount))
	c1 := PolarToXY(cx, cy, r, SlotAngle(playerIndex+1, playerCount))

	anchor = lerp(c0, c1, float64(anchorSlot)/float64(SlotsPerSide))
	tangent = unit(Point{X: c1.X - c0.X, Y: c1.Y - c0.Y})
	normal = Point{X: -tangent.Y, Y: tangent.X}

	if (cx-anchor.X)*normal.X+(cy-anchor.Y)*normal.Y < 0 {
		normal = Point{X: -normal.X, Y: -normal.Y}
	}
	return anchor, tangent, normal
}

func lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func unit(p Point) Point {
	length := math.Hypot(p.X, p.Y)
	if length == 0 {
		return Point{}
	}
	return Point{X: p.X / length, Y: p.Y / length}
}

func translate(p, dir Point, distance float64) Point {
	return Point{
		X: p.X + dir.X*distance,
		Y: p.Y + dir.Y*distance,
	}
}

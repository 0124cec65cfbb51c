package board

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarToXY(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  Point
	}{
		{
			name:  "angle zero points right",
			angle: 0,
			want:  Point{X: 110, Y: 50},
		},
		{
			name:  "quarter turn points down",
			angle: math.Pi / 2,
			want:  Point{X: 100, Y: 110},
		},
		{
			name:  "half turn points left",
			angle: math.Pi,
			want:  Point{X: 40, Y: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PolarToXY(100, 50, 60, tt.angle)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestSlotAnglePeriodicity(t *testing.T) {
	for _, total := range []int{1, 2, 4, 8, 72, 144} {
		for _, index := range []int{-7, -1, 0, 1, 5, 17, 100} {
			assert.Equal(t, SlotAngle(index, total), SlotAngle(index+total, total),
				"index %d total %d", index, total)
		}
	}
}

func TestSlotAngleTopAtZero(t *testing.T) {
	a := SlotAngle(0, 72)
	p := PolarToXY(0, 0, 100, a)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, -100, p.Y, 1e-9)
}

func TestNgonSlotPositionEvenSpacingWithinSide(t *testing.T) {
	playerCount := 4
	totalSlots := playerCount * SlotsPerSide

	// All consecutive slot pairs on one side are the same distance apart.
	var prev float64
	for i := 1; i < SlotsPerSide; i++ {
		a := NgonSlotPosition(i-1, totalSlots, playerCount, 0, 0, 100)
		b := NgonSlotPosition(i, totalSlots, playerCount, 0, 0, 100)
		d := math.Hypot(b.X-a.X, b.Y-a.Y)
		if i > 1 {
			assert.InDelta(t, prev, d, 1e-9)
		}
		prev = d
	}
}

func TestNgonSlotPositionSideBoundarySeam(t *testing.T) {
	playerCount := 4
	totalSlots := playerCount * SlotsPerSide

	last := NgonSlotPosition(SlotsPerSide-1, totalSlots, playerCount, 0, 0, 100)
	first := NgonSlotPosition(SlotsPerSide, totalSlots, playerCount, 0, 0, 100)

	// Adjacent, not coincident: the seam between sides is accepted.
	d := math.Hypot(first.X-last.X, first.Y-last.Y)
	assert.Greater(t, d, 0.0)
}

func TestTrackLayoutCounts(t *testing.T) {
	for playerCount := 2; playerCount <= 8; playerCount++ {
		t.Run(fmt.Sprintf("%d players", playerCount), func(t *testing.T) {
			layout := TrackLayout(playerCount, 360, 360, 300, 25)

			assert.Len(t, layout.MainTrack, playerCount*SlotsPerSide)
			assert.Len(t, layout.Homes, playerCount)
			assert.Len(t, layout.Safes, playerCount)

			for i, slot := range layout.MainTrack {
				assert.Equal(t, i+1, slot.Index)
				assert.Equal(t, i/SlotsPerSide, slot.PlayerLane)
			}
			for i, home := range layout.Homes {
				assert.Equal(t, i, home.PlayerIndex)
				assert.Len(t, home.Positions, CellsPerGroup)
			}
			for i, safe := range layout.Safes {
				assert.Equal(t, i, safe.PlayerIndex)
				assert.Len(t, safe.Positions, CellsPerGroup)
			}
		})
	}
}

func TestHomeAndSafeCellsPointInward(t *testing.T) {
	cx, cy, r := 360.0, 360.0, 300.0

	for playerCount := 2; playerCount <= 8; playerCount++ {
		layout := TrackLayout(playerCount, cx, cy, r, 10)
		for _, group := range append(layout.Homes, layout.Safes...) {
			for _, pos := range group.Positions {
				d := math.Hypot(pos.X-cx, pos.Y-cy)
				assert.Less(t, d, r, "player %d of %d", group.PlayerIndex, playerCount)
			}
		}
	}
}

func TestGroupShapeIndependentOfPlayerCount(t *testing.T) {
	spread := func(points []Point) float64 {
		max := 0.0
		for i := range points {
			for j := i + 1; j < len(points); j++ {
				d := math.Hypot(points[j].X-points[i].X, points[j].Y-points[i].Y)
				if d > max {
					max = d
				}
			}
		}
		return max
	}

	// Increasing the player count must not distort any single player's
	// home or safe shape: the spread depends on spacing alone.
	homeSpread := spread(HomePositions(0, 2, 0, 0, 300, 12))
	safeSpread := spread(SafePositions(0, 2, 0, 0, 300, 12))
	for playerCount := 3; playerCount <= 8; playerCount++ {
		assert.InDelta(t, homeSpread, spread(HomePositions(1, playerCount, 0, 0, 300, 12)), 1e-9)
		assert.InDelta(t, safeSpread, spread(SafePositions(1, playerCount, 0, 0, 300, 12)), 1e-9)
	}
}

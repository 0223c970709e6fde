package streaming

import (
	"math"

	"go.uber.org/zap"
)

// gapTolerance is the share of expected rows that must be present ahead of
// the camera before a gap is reported.
const gapTolerance = 0.8

// DetectAndFillGaps checks coverage ahead of the camera and, if too few rows
// are present, places one emergency tile in front of the frontmost tile.
// Returns true when a tile was added. No-op unless GapDetection is enabled.
//
// The emergency tile is always placed in column 0, which only covers a
// camera that stays on the central column.
func (g *Grid) DetectAndFillGaps(cameraZ float64) bool {
	if !g.cfg.GapDetection || len(g.tiles) == 0 {
		return false
	}

	edge := g.cfg.Params.Edge
	front := cameraZ - g.cfg.BufferDistance*edge
	back := front - float64(g.cfg.TilesZ)*edge

	inFront := 0
	frontmost := g.tiles[0]
	for _, t := range g.tiles {
		z := t.WorldZ()
		if z <= front && z >= back {
			inFront++
		}
		if t.Z < frontmost.Z {
			frontmost = t
		}
	}

	rows := float64(inFront) / float64(g.cfg.TilesX)
	expected := math.Min(float64(g.cfg.TilesZ), math.Ceil(g.cfg.BufferDistance*2))
	if rows >= expected*gapTolerance {
		return false
	}

	c := Coord{X: 0, Z: frontmost.Z - 1}
	if _, taken := g.index[c]; taken {
		g.log.Debug("gap detected but emergency slot is taken",
			zap.Int("tileX", c.X),
			zap.Int("tileZ", c.Z),
		)
		return false
	}

	g.log.Warn("coverage gap detected, creating emergency tile",
		zap.Float64("cameraZ", cameraZ),
		zap.Float64("rowsAhead", rows),
		zap.Float64("expectedRows", expected),
		zap.Float64("tileZ", float64(c.Z)*edge),
	)
	g.addTile(c, true)
	g.emergencies++
	return true
}

package streaming

import (
	"math"

	"go.uber.org/zap"
)

// summaryInterval is the simulated time between coverage summaries, in seconds.
const summaryInterval = 5.0

// Stats summarises grid coverage.
type Stats struct {
	Tiles         int
	Pending       int
	MinZ, MaxZ    float64
	Span          float64
	ExpectedSpan  float64
	RecycledTotal int
	Emergencies   int
	Superseded    int
}

// Stats computes a coverage summary of the live tiles.
func (g *Grid) Stats() Stats {
	s := Stats{
		Tiles:         len(g.tiles),
		ExpectedSpan:  g.cfg.Params.Edge * float64(g.cfg.TilesZ-1),
		RecycledTotal: g.recycledTotal,
		Emergencies:   g.emergencies,
		Superseded:    g.superseded,
	}
	if len(g.tiles) == 0 {
		return s
	}

	s.MinZ = math.Inf(1)
	s.MaxZ = math.Inf(-1)
	for _, t := range g.tiles {
		z := t.WorldZ()
		s.MinZ = math.Min(s.MinZ, z)
		s.MaxZ = math.Max(s.MaxZ, z)
		if t.State == TilePendingRecycle {
			s.Pending++
		}
	}
	s.Span = s.MaxZ - s.MinZ
	return s
}

// LogCoverage writes a coverage summary once per summary interval of
// simulated time. elapsed is in seconds. No-op unless Diagnostics is set.
func (g *Grid) LogCoverage(elapsed, cameraZ float64) {
	if !g.cfg.Diagnostics {
		return
	}
	bucket := int(elapsed / summaryInterval)
	if bucket == g.summaryBucket {
		return
	}
	g.summaryBucket = bucket

	s := g.Stats()
	g.log.Info("terrain coverage",
		zap.Int("t", int(elapsed)),
		zap.Float64("cameraZ", math.Round(cameraZ)),
		zap.Float64("minZ", s.MinZ),
		zap.Float64("maxZ", s.MaxZ),
		zap.Float64("span", s.Span),
		zap.Float64("expectedSpan", s.ExpectedSpan),
		zap.Int("tiles", s.Tiles),
		zap.Int("pending", s.Pending),
	)
}

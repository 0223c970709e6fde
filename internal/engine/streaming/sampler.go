package streaming

import (
	"math"

	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

// Sampler answers surface elevation queries for camera following.
//
// At QualityAnalytic it evaluates the height function directly. Below that
// it interpolates the vertex grid of the tile under the point, so the camera
// follows what is actually drawn.
type Sampler struct {
	grid *Grid
}

// NewSampler creates a sampler over the tiles of g.
func NewSampler(g *Grid) *Sampler {
	return &Sampler{grid: g}
}

// SampleHeight returns the surface elevation at a world point.
func (s *Sampler) SampleHeight(x, z float64) float64 {
	cfg := s.grid.cfg
	if cfg.Quality >= terrain.QualityAnalytic {
		return terrain.Height(x, z, cfg.Params)
	}

	t := s.findTile(x, z)
	if t == nil {
		return terrain.Height(x, z, cfg.Params)
	}
	u, v := t.UV(x, z)
	return float64(terrain.InterpolateGrid(t.Mesh, float32(u), float32(v)))
}

// findTile returns the tile containing (x, z), or the tile with the nearest
// centre if it is within one edge. Returns nil when nothing is close.
func (s *Sampler) findTile(x, z float64) *Tile {
	var nearest *Tile
	best := math.Inf(1)
	for _, t := range s.grid.tiles {
		if t.Contains(x, z) {
			return t
		}
		dx := x - t.WorldX()
		dz := z - t.WorldZ()
		if d := dx*dx + dz*dz; d < best {
			best = d
			nearest = t
		}
	}
	if nearest == nil {
		return nil
	}
	edge := s.grid.cfg.Params.Edge
	if math.Abs(x-nearest.WorldX()) > edge || math.Abs(z-nearest.WorldZ()) > edge {
		return nil
	}
	return nearest
}

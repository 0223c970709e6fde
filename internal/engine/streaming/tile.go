// Package streaming keeps a bounded window of terrain tiles around a moving
// viewpoint: placement, recycling, gap repair and height sampling.
package streaming

import (
	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

// Coord is an integer tile grid coordinate.
type Coord struct {
	X, Z int
}

// TileState tracks where a tile is in its recycle cycle.
type TileState int

const (
	// TileActive tiles are placed and up to date.
	TileActive TileState = iota
	// TilePendingRecycle tiles are behind the camera but were not moved
	// this frame because the recycle budget ran out.
	TilePendingRecycle
)

// Tile is one mesh patch of the terrain. Its mesh buffer is owned by the
// tile and only rewritten by the Grid that created it.
type Tile struct {
	Coord
	Mesh      *terrain.Mesh
	State     TileState
	Emergency bool

	// Version increments every time the vertex data is rewritten.
	Version uint64
}

// WorldX returns the X of the tile centre in world space.
func (t *Tile) WorldX() float64 {
	return float64(t.X) * t.Mesh.Edge
}

// WorldZ returns the Z of the tile centre in world space.
func (t *Tile) WorldZ() float64 {
	return float64(t.Z) * t.Mesh.Edge
}

// Contains reports whether the world point (x, z) lies on the tile footprint.
func (t *Tile) Contains(x, z float64) bool {
	half := t.Mesh.Edge / 2
	dx := x - t.WorldX()
	dz := z - t.WorldZ()
	return dx >= -half && dx <= half && dz >= -half && dz <= half
}

// UV converts a world point to normalised tile coordinates.
func (t *Tile) UV(x, z float64) (u, v float64) {
	edge := t.Mesh.Edge
	u = (x - (t.WorldX() - edge/2)) / edge
	v = (z - (t.WorldZ() - edge/2)) / edge
	return u, v
}

package debug

import (
	"github.com/Faultbox/cosine-terrain/internal/engine/streaming"
)

// LineVertex is a coloured line endpoint for overlay rendering.
type LineVertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

var (
	colorActive    = [3]float32{0.5, 0.5, 0.5}
	colorPending   = [3]float32{0.9, 0.2, 0.2}
	colorEmergency = [3]float32{0.95, 0.8, 0.1}
)

// TileColor returns the overlay colour for a tile's state.
func TileColor(t *streaming.Tile) [3]float32 {
	switch {
	case t.Emergency:
		return colorEmergency
	case t.State == streaming.TilePendingRecycle:
		return colorPending
	default:
		return colorActive
	}
}

// TileOutlines generates the footprint of every tile as four line segments
// at the given height, coloured by state. Returns 8 vertices per tile.
func TileOutlines(tiles []*streaming.Tile, height float32) []LineVertex {
	vertices := make([]LineVertex, 0, len(tiles)*8)
	for _, t := range tiles {
		if t.Mesh == nil {
			continue
		}
		c := TileColor(t)
		half := t.Mesh.Edge / 2
		x0 := float32(t.WorldX() - half)
		x1 := float32(t.WorldX() + half)
		z0 := float32(t.WorldZ() - half)
		z1 := float32(t.WorldZ() + half)

		vertices = append(vertices,
			LineVertex{x0, height, z0, c[0], c[1], c[2]}, LineVertex{x1, height, z0, c[0], c[1], c[2]},
			LineVertex{x1, height, z0, c[0], c[1], c[2]}, LineVertex{x1, height, z1, c[0], c[1], c[2]},
			LineVertex{x1, height, z1, c[0], c[1], c[2]}, LineVertex{x0, height, z1, c[0], c[1], c[2]},
			LineVertex{x0, height, z1, c[0], c[1], c[2]}, LineVertex{x0, height, z0, c[0], c[1], c[2]},
		)
	}
	return vertices
}

// TileBounds generates the mesh bounding boxes of every tile in world space,
// coloured by state. Returns BBoxWireframeVertexCount vertices per tile.
func TileBounds(tiles []*streaming.Tile) []LineVertex {
	vertices := make([]LineVertex, 0, len(tiles)*BBoxWireframeVertexCount)
	for _, t := range tiles {
		if t.Mesh == nil {
			continue
		}
		c := TileColor(t)
		origin := [3]float32{float32(t.WorldX()), 0, float32(t.WorldZ())}
		box := MeshBoundsWireframe(t.Mesh.Bounds, origin, 0)
		for i := 0; i < len(box); i += 3 {
			vertices = append(vertices, LineVertex{box[i], box[i+1], box[i+2], c[0], c[1], c[2]})
		}
	}
	return vertices
}

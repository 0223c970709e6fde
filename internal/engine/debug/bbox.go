// Package debug provides diagnostics for the terrain streamer: frame traces
// and line overlays for tile placement and bounds.
package debug

import "github.com/Faultbox/cosine-terrain/internal/engine/terrain"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// GenerateBBoxWireframeVertices creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// MeshBoundsWireframe returns the wireframe of a tile mesh's local bounds
// translated to origin and grown by padding on every side.
func MeshBoundsWireframe(b terrain.Bounds, origin [3]float32, padding float32) []float32 {
	return GenerateBBoxWireframeVertices(
		b.Min[0]+origin[0]-padding, b.Min[1]+origin[1]-padding, b.Min[2]+origin[2]-padding,
		b.Max[0]+origin[0]+padding, b.Max[1]+origin[1]+padding, b.Max[2]+origin[2]+padding,
	)
}

// Package terrain provides the closed-form height field and tile mesh building
// for the streamed cosine terrain.
package terrain

// Vertex represents a terrain mesh vertex.
// Position is tile-local: X and Z span [-edge/2, +edge/2], Y is the elevation.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Mesh holds one tile's vertex grid ready for GPU upload.
// Vertices are row-major with (Resolution+1) vertices per row; row index runs
// along local Z.
type Mesh struct {
	Vertices   []Vertex
	Indices    []uint32
	Resolution int
	Edge       float64
	Bounds     Bounds
}

// Bounds holds the axis-aligned bounding box of a mesh in tile-local space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Stride returns the number of vertices per mesh row.
func (m *Mesh) Stride() int {
	return m.Resolution + 1
}

// HeightAt returns the stored elevation of grid vertex (ix, iz).
func (m *Mesh) HeightAt(ix, iz int) float32 {
	return m.Vertices[iz*m.Stride()+ix].Position[1]
}

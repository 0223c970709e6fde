package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NewMesh allocates an empty tile mesh for the given resolution and edge.
// Indices are built once; FillTile rewrites vertices in place.
func NewMesh(resolution int, edge float64) *Mesh {
	stride := resolution + 1
	return &Mesh{
		Vertices:   make([]Vertex, stride*stride),
		Indices:    buildIndices(resolution),
		Resolution: resolution,
		Edge:       edge,
	}
}

// GenerateTile builds the mesh for tile (tileX, tileZ).
func GenerateTile(tileX, tileZ int, p Params, q Quality) *Mesh {
	m := NewMesh(p.Resolution, p.Edge)
	FillTile(m, tileX, tileZ, p, q)
	return m
}

// FillTile rewrites every vertex of m for tile (tileX, tileZ).
// The mesh must have been allocated for p.Resolution.
func FillTile(m *Mesh, tileX, tileZ int, p Params, q Quality) {
	if m.Resolution != p.Resolution || len(m.Vertices) != (p.Resolution+1)*(p.Resolution+1) {
		*m = *NewMesh(p.Resolution, p.Edge)
	}
	m.Edge = p.Edge

	stride := m.Stride()
	half := p.Edge / 2
	step := p.Edge / float64(p.Resolution)
	originX := float64(tileX) * p.Edge
	originZ := float64(tileZ) * p.Edge

	m.Bounds = Bounds{
		Min: [3]float32{1e30, 1e30, 1e30},
		Max: [3]float32{-1e30, -1e30, -1e30},
	}

	for iz := range stride {
		localZ := localCoord(iz, p.Resolution, half, step)
		for ix := range stride {
			localX := localCoord(ix, p.Resolution, half, step)
			v := &m.Vertices[iz*stride+ix]
			v.Position[0] = float32(localX)
			v.Position[2] = float32(localZ)

			var worldX, worldZ float64
			if q == QualityGeometry {
				// Legacy order: buffer coordinate first, then the tile offset.
				worldX = float64(v.Position[0] + float32(originX))
				worldZ = float64(v.Position[2] + float32(originZ))
			} else {
				worldX = originX + localX
				worldZ = originZ + localZ
			}

			v.Position[1] = float32(Height(worldX, worldZ, p))
			updateBounds(&m.Bounds, v.Position)
		}
	}

	ComputeNormals(m)
}

// localCoord returns the tile-local coordinate of grid line i.
// The last line is pinned to +half so neighbouring tiles share the edge exactly.
func localCoord(i, resolution int, half, step float64) float64 {
	if i == resolution {
		return half
	}
	return -half + float64(i)*step
}

// buildIndices returns two counter-clockwise triangles per grid cell,
// as seen from +Y.
func buildIndices(resolution int) []uint32 {
	stride := uint32(resolution + 1)
	indices := make([]uint32, 0, resolution*resolution*6)
	for iz := range uint32(resolution) {
		for ix := range uint32(resolution) {
			a := iz*stride + ix
			b := a + 1
			c := a + stride
			d := c + 1
			indices = append(indices,
				a, c, b,
				b, c, d,
			)
		}
	}
	return indices
}

// ComputeNormals recomputes smooth vertex normals by accumulating
// area-weighted face normals, then normalising.
func ComputeNormals(m *Mesh) {
	for i := range m.Vertices {
		m.Vertices[i].Normal = [3]float32{}
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		ia, ib, ic := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		pa := mgl32.Vec3(m.Vertices[ia].Position)
		pb := mgl32.Vec3(m.Vertices[ib].Position)
		pc := mgl32.Vec3(m.Vertices[ic].Position)

		face := pb.Sub(pa).Cross(pc.Sub(pa))
		for _, idx := range [3]uint32{ia, ib, ic} {
			n := mgl32.Vec3(m.Vertices[idx].Normal).Add(face)
			m.Vertices[idx].Normal = n
		}
	}

	for i := range m.Vertices {
		n := mgl32.Vec3(m.Vertices[i].Normal)
		if n.Len() < 1e-12 {
			m.Vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		m.Vertices[i].Normal = n.Normalize()
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := range 3 {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

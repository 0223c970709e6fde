package terrain

import (
	"github.com/chewxy/math32"
)

// InterpolateGrid returns the bilinearly interpolated elevation of m at the
// normalised tile coordinates (u, v), each in [0, 1] across the tile edge.
// Out-of-range inputs are clamped to the tile border.
func InterpolateGrid(m *Mesh, u, v float32) float32 {
	if m == nil || m.Resolution < 1 {
		return 0
	}
	res := m.Resolution

	gx := clampf(u, 0, 1) * float32(res)
	gz := clampf(v, 0, 1) * float32(res)

	cellX := int(math32.Floor(gx))
	cellZ := int(math32.Floor(gz))

	// Clamp to valid range
	if cellX < 0 {
		cellX = 0
	}
	if cellZ < 0 {
		cellZ = 0
	}
	if cellX > res-1 {
		cellX = res - 1
	}
	if cellZ > res-1 {
		cellZ = res - 1
	}

	fracX := clampf(gx-float32(cellX), 0, 1)
	fracZ := clampf(gz-float32(cellZ), 0, 1)

	h00 := m.HeightAt(cellX, cellZ)
	h10 := m.HeightAt(cellX+1, cellZ)
	h01 := m.HeightAt(cellX, cellZ+1)
	h11 := m.HeightAt(cellX+1, cellZ+1)

	// Near edge (lower Z): lerp along X
	near := h00*(1-fracX) + h10*fracX
	// Far edge (higher Z)
	far := h01*(1-fracX) + h11*fracX
	return near*(1-fracZ) + far*fracZ
}

func clampf(v, lo, hi float32) float32 {
	if math32.IsNaN(v) {
		return lo
	}
	return math32.Max(lo, math32.Min(hi, v))
}

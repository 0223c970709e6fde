package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cosine-terrain/internal/engine/camera"
	"github.com/Faultbox/cosine-terrain/internal/engine/debug"
	"github.com/Faultbox/cosine-terrain/internal/engine/streaming"
	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

var (
	vertexStride = int32(unsafe.Sizeof(terrain.Vertex{}))
	lineStride   = int(unsafe.Sizeof(debug.LineVertex{}))
)

// gpuTile holds the GPU buffers of one tile.
type gpuTile struct {
	vao, vbo, ebo uint32
	indexCount    int32
	resolution    int
	version       uint64
	uploaded      bool
}

func newGPUTile(m *terrain.Mesh) *gpuTile {
	gt := &gpuTile{
		resolution: m.Resolution,
		indexCount: int32(len(m.Indices)),
	}
	gl.GenVertexArrays(1, &gt.vao)
	gl.GenBuffers(1, &gt.vbo)
	gl.GenBuffers(1, &gt.ebo)

	gl.BindVertexArray(gt.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, gt.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(vertexStride), nil, gl.DYNAMIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(0)
	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride, 3*4)
	gl.EnableVertexAttribArray(1)

	// Topology never changes for a resolution, so indices are uploaded once.
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gt.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return gt
}

// upload replaces the vertex data with the tile's current mesh.
func (gt *gpuTile) upload(t *streaming.Tile) {
	v := t.Mesh.Vertices
	gl.BindBuffer(gl.ARRAY_BUFFER, gt.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(v)*int(vertexStride), gl.Ptr(v))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gt.version = t.Version
	gt.uploaded = true
}

func (gt *gpuTile) delete() {
	gl.DeleteVertexArrays(1, &gt.vao)
	gl.DeleteBuffers(1, &gt.vbo)
	gl.DeleteBuffers(1, &gt.ebo)
}

// plan compares the resident buffers with the tiles of a frame. It returns
// the tiles whose vertex data must be (re)uploaded and the resident tiles
// that are no longer part of the frame.
func plan(resident map[*streaming.Tile]*gpuTile, tiles []*streaming.Tile) (upload, stale []*streaming.Tile) {
	seen := make(map[*streaming.Tile]struct{}, len(tiles))
	for _, t := range tiles {
		if t == nil || t.Mesh == nil {
			continue
		}
		seen[t] = struct{}{}
		gt, ok := resident[t]
		if !ok || !gt.uploaded || gt.version != t.Version || gt.resolution != t.Mesh.Resolution {
			upload = append(upload, t)
		}
	}
	for t := range resident {
		if _, ok := seen[t]; !ok {
			stale = append(stale, t)
		}
	}
	return upload, stale
}

// overlayLines returns the tile footprints and, when bounds is set, the
// mesh bounding boxes as one line batch.
func overlayLines(tiles []*streaming.Tile, bounds bool) []debug.LineVertex {
	lines := debug.TileOutlines(tiles, 0)
	if bounds {
		lines = append(lines, debug.TileBounds(tiles)...)
	}
	return lines
}

// relativeView returns the view matrix with the eye moved to the origin.
// Geometry is offset by (world - eye) in float64 before it reaches the GPU,
// so precision does not degrade as the camera travels.
func relativeView(p camera.Pose) mgl64.Mat4 {
	up := p.Up
	if up.Len() == 0 {
		up = mgl64.Vec3{0, 1, 0}
	}
	dir := p.Target.Sub(p.Eye)
	if dir.Len() == 0 {
		dir = mgl64.Vec3{0, 0, -1}
	}
	return mgl64.LookAtV(mgl64.Vec3{}, dir, up)
}

func toMat4f(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

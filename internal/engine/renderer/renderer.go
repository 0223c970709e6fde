// Package renderer draws streamed terrain tiles with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/cosine-terrain/internal/engine/renderer/shaders"
	"github.com/Faultbox/cosine-terrain/internal/engine/shader"
	"github.com/Faultbox/cosine-terrain/internal/engine/streaming"
	"github.com/Faultbox/cosine-terrain/internal/game"
)

// Config holds renderer configuration.
type Config struct {
	Wireframe  bool
	Overlay    bool    // tile footprints coloured by recycle state
	Bounds     bool    // mesh bounding boxes, drawn with the overlay
	FogFar     float32 // distance at which terrain fades fully into the fog
	Color      [3]float32
	Background [3]float32
}

// DefaultConfig returns a green wireframe on a dark background.
func DefaultConfig() Config {
	return Config{
		Wireframe:  true,
		FogFar:     60000,
		Color:      [3]float32{0, 1, 0},
		Background: [3]float32{0.02, 0.03, 0.05},
	}
}

// Renderer uploads tile meshes and draws them. It implements game.Presenter.
// Must be created and used on the thread that owns the GL context.
type Renderer struct {
	config Config
	log    *zap.Logger

	terrain *shader.Program
	lines   *shader.Program

	tiles map[*streaming.Tile]*gpuTile

	lineVAO   uint32
	lineVBO   uint32
	lineCount int32

	width, height int
}

var _ game.Presenter = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config: cfg,
		log:    log,
		tiles:  make(map[*streaming.Tile]*gpuTile),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	var err error
	if r.terrain, err = shader.Compile(shaders.TerrainVertexShader, shaders.TerrainFragmentShader); err != nil {
		return nil, fmt.Errorf("terrain program: %w", err)
	}
	if r.lines, err = shader.Compile(shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.terrain.Delete()
		return nil, fmt.Errorf("line program: %w", err)
	}

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(lineStride), 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(lineStride), 3*4)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	return r, nil
}

// ToggleWireframe switches between wireframe and filled terrain.
func (r *Renderer) ToggleWireframe() {
	r.config.Wireframe = !r.config.Wireframe
}

// ToggleOverlay switches the tile footprint overlay.
func (r *Renderer) ToggleOverlay() {
	r.config.Overlay = !r.config.Overlay
}

// ToggleBounds switches the mesh bounding boxes drawn with the overlay.
func (r *Renderer) ToggleBounds() {
	r.config.Bounds = !r.config.Bounds
}

// Present draws one frame.
func (r *Renderer) Present(f game.Frame) error {
	if f.Width != r.width || f.Height != r.height {
		r.width, r.height = f.Width, f.Height
		gl.Viewport(0, 0, int32(f.Width), int32(f.Height))
		r.log.Debug("viewport resized", zap.Int("width", f.Width), zap.Int("height", f.Height))
	}

	bg := r.config.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.sync(f.Tiles)

	view := toMat4f(relativeView(f.Pose))
	proj := toMat4f(f.Projection)
	eye := f.Pose.Eye

	r.terrain.Use()
	r.terrain.SetMat4("uView", view)
	r.terrain.SetMat4("uProjection", proj)
	r.terrain.SetVec3("uColor", mgl32.Vec3(r.config.Color))
	r.terrain.SetVec3("uLightDir", mgl32.Vec3{0.3, 1, 0.2})
	r.terrain.SetVec3("uFogColor", mgl32.Vec3(bg))
	r.terrain.SetFloat("uFogFar", r.config.FogFar)

	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	for _, t := range f.Tiles {
		gt := r.tiles[t]
		if gt == nil {
			continue
		}
		origin := mgl32.Vec3{
			float32(t.WorldX() - eye.X()),
			float32(-eye.Y()),
			float32(t.WorldZ() - eye.Z()),
		}
		r.terrain.SetVec3("uOrigin", origin)
		gl.BindVertexArray(gt.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, gt.indexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	if r.config.Overlay {
		r.drawOverlay(f, view, proj)
	}

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

// sync uploads new or rewritten tile meshes and frees buffers of tiles
// that left the grid.
func (r *Renderer) sync(tiles []*streaming.Tile) {
	upload, stale := plan(r.tiles, tiles)
	for _, t := range stale {
		r.tiles[t].delete()
		delete(r.tiles, t)
	}
	for _, t := range upload {
		gt := r.tiles[t]
		if gt == nil || gt.resolution != t.Mesh.Resolution {
			if gt != nil {
				gt.delete()
			}
			gt = newGPUTile(t.Mesh)
			r.tiles[t] = gt
		}
		gt.upload(t)
	}
	if len(upload) > 0 || len(stale) > 0 {
		r.log.Debug("tile buffers synced",
			zap.Int("uploaded", len(upload)),
			zap.Int("freed", len(stale)),
			zap.Int("resident", len(r.tiles)),
		)
	}
}

func (r *Renderer) drawOverlay(f game.Frame, view, proj mgl32.Mat4) {
	lines := overlayLines(f.Tiles, r.config.Bounds)
	if len(lines) == 0 {
		return
	}
	r.lineCount = int32(len(lines))

	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(lines)*lineStride, gl.Ptr(lines), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	eye := f.Pose.Eye
	r.lines.Use()
	r.lines.SetMat4("uView", view)
	r.lines.SetMat4("uProjection", proj)
	r.lines.SetVec3("uEye", mgl32.Vec3{float32(eye.X()), float32(eye.Y()), float32(eye.Z())})

	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(r.lineVAO)
	gl.DrawArrays(gl.LINES, 0, r.lineCount)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// Release frees all GPU resources. The GL context must still be current.
func (r *Renderer) Release() {
	r.log.Info("releasing renderer", zap.Int("tiles", len(r.tiles)))
	for t, gt := range r.tiles {
		gt.delete()
		delete(r.tiles, t)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	r.terrain.Delete()
	r.lines.Delete()
}

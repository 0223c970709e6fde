package game

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cosine-terrain/internal/engine/camera"
	"github.com/Faultbox/cosine-terrain/internal/engine/streaming"
)

// FrameFunc advances the simulation by dt seconds and submits one frame.
type FrameFunc = func(dt float64) error

// Surface is the drawable target that drives the frame loop.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	// Loop calls frame once per displayed frame until the context is
	// cancelled, the user quits, or frame returns an error. It returns nil
	// on a normal quit and ctx.Err() on cancellation.
	Loop(ctx context.Context, frame FrameFunc) error
}

// Frame is everything a presenter needs to draw one frame. Tiles and their
// meshes are borrowed for the duration of Present only.
type Frame struct {
	Index      int
	Time       float64 // simulated seconds since start
	DT         float64
	Width      int
	Height     int
	Pose       camera.Pose
	Projection mgl64.Mat4
	Tiles      []*streaming.Tile
	Stats      streaming.Stats
	Recycled   int
	GapFilled  bool
}

// Presenter draws frames.
type Presenter interface {
	Present(f Frame) error
	// Release frees GPU or other resources. It is called once, after the
	// frame loop has stopped.
	Release()
}

// HeadlessSurface runs a fixed-step loop without a window.
type HeadlessSurface struct {
	Width  int
	Height int
	DT     float64 // seconds per frame
	Frames int     // frames to run; zero or less runs until cancelled
}

// NewHeadlessSurface returns a 60 Hz headless surface.
func NewHeadlessSurface(width, height, frames int) *HeadlessSurface {
	return &HeadlessSurface{Width: width, Height: height, DT: 1.0 / 60, Frames: frames}
}

// Size returns the configured surface size.
func (s *HeadlessSurface) Size() (int, int) {
	return s.Width, s.Height
}

// Loop calls frame with a fixed dt.
func (s *HeadlessSurface) Loop(ctx context.Context, frame FrameFunc) error {
	for i := 0; s.Frames <= 0 || i < s.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := frame(s.DT); err != nil {
			return err
		}
	}
	return nil
}

// NullPresenter discards frames, keeping the last one for inspection.
type NullPresenter struct {
	Frames   int
	Last     Frame
	Released bool
}

// Present records the frame.
func (p *NullPresenter) Present(f Frame) error {
	p.Frames++
	p.Last = f
	return nil
}

// Release marks the presenter released.
func (p *NullPresenter) Release() {
	p.Released = true
}

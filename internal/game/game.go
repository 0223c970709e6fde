// Package game wires the terrain streamer, camera and presentation surface
// into a frame loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/cosine-terrain/internal/config"
	"github.com/Faultbox/cosine-terrain/internal/engine/camera"
	"github.com/Faultbox/cosine-terrain/internal/engine/debug"
	"github.com/Faultbox/cosine-terrain/internal/engine/streaming"
	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
	"github.com/Faultbox/cosine-terrain/internal/logger"
)

// ErrClosed is returned by Run and Tick after Close.
var ErrClosed = errors.New("game: closed")

// Option customises a Game.
type Option func(*Game)

// WithLogger sets the logger used by the game and its components.
func WithLogger(log *zap.Logger) Option {
	return func(g *Game) {
		if log != nil {
			g.log = log
		}
	}
}

// Game is the main viewer instance. A Game owns its presenter: it is
// released by Close, or by New if construction fails.
type Game struct {
	cfg       *config.Config
	log       *zap.Logger
	surface   Surface
	presenter Presenter

	grid    *streaming.Grid
	sampler *streaming.Sampler
	state   camera.State
	cam     *camera.Controller
	tracer  *debug.Tracer

	frame int

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	closed  bool
}

// New validates cfg and builds the tile grid and camera for surface.
func New(cfg *config.Config, surface Surface, presenter Presenter, opts ...Option) (g *Game, err error) {
	if surface == nil || presenter == nil {
		return nil, errors.New("game: surface and presenter are required")
	}

	g = &Game{
		cfg:       cfg,
		log:       logger.Log,
		surface:   surface,
		presenter: presenter,
	}
	for _, opt := range opts {
		opt(g)
	}

	// Anything built before a failure is released on the way out.
	defer func() {
		if err != nil {
			g.release()
			g = nil
		}
	}()

	if err := cfg.Validate(); err != nil {
		return g, fmt.Errorf("invalid config: %w", err)
	}

	width, height := surface.Size()
	tilesX := terrain.ComputeTileColumns(width, height, cfg.Camera.FOV, cfg.Camera.Far, cfg.Terrain.TileSize, g.log.Named("terrain"))
	gridCfg, err := cfg.GridConfig(tilesX)
	if err != nil {
		return g, err
	}

	if w := terrain.ValidateFrequency(gridCfg.Params.Frequency, gridCfg.Params.Edge); w != nil {
		g.log.Warn("terrain frequency may cause tile boundary artifacts",
			zap.Float64("frequency", w.Frequency),
			zap.Float64("tileSize", w.Edge),
			zap.Float64("wavelength", w.Wavelength),
			zap.Float64("ratio", w.Ratio),
			zap.Float64("fraction", w.Fraction),
		)
	}

	g.grid, err = streaming.NewGrid(gridCfg, g.log.Named("streaming"))
	if err != nil {
		return g, err
	}
	g.sampler = streaming.NewSampler(g.grid)
	g.cam = camera.NewController(cfg.CameraConfig(), g.sampler, &g.state)

	if path := cfg.Logging.TraceFile; path != "" {
		if g.tracer, err = debug.OpenTracer(path); err != nil {
			return g, err
		}
	}

	g.log.Info("terrain ready",
		zap.Int("tilesX", gridCfg.TilesX),
		zap.Int("tilesZ", gridCfg.TilesZ),
		zap.Int("tiles", g.grid.Len()),
		zap.Int("quality", int(gridCfg.Quality)),
		zap.Stringer("blend", gridCfg.Params.Blend),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return g, nil
}

// Grid returns the tile grid.
func (g *Game) Grid() *streaming.Grid {
	return g.grid
}

// Sampler returns the terrain height sampler.
func (g *Game) Sampler() *streaming.Sampler {
	return g.sampler
}

// Camera returns the camera state.
func (g *Game) Camera() *camera.State {
	return &g.state
}

// Tick advances one frame: camera, then recycling and gap repair, then
// presentation. The presenter always sees a settled grid.
func (g *Game) Tick(dt float64) error {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return ErrClosed
	}

	g.cam.Update(dt)

	z := g.state.Position.Z()
	recycled := g.grid.Recycle(z)
	filled := g.grid.DetectAndFillGaps(z)
	g.grid.LogCoverage(g.state.Time, z)

	f := g.buildFrame(dt, recycled, filled)
	if g.tracer != nil {
		if err := g.tracer.Write(g.traceRecord(&f)); err != nil {
			return fmt.Errorf("trace: %w", err)
		}
	}
	if err := g.presenter.Present(f); err != nil {
		return fmt.Errorf("present frame %d: %w", f.Index, err)
	}
	g.frame++
	return nil
}

func (g *Game) buildFrame(dt float64, recycled int, filled bool) Frame {
	width, height := g.surface.Size()
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	c := g.cfg.Camera
	return Frame{
		Index:      g.frame,
		Time:       g.state.Time,
		DT:         dt,
		Width:      width,
		Height:     height,
		Pose:       g.cam.Pose(),
		Projection: camera.Projection(c.FOV, aspect, c.Near, c.Far),
		Tiles:      g.grid.Tiles(),
		Stats:      g.grid.Stats(),
		Recycled:   recycled,
		GapFilled:  filled,
	}
}

func (g *Game) traceRecord(f *Frame) *debug.FrameRecord {
	eye, target := f.Pose.Eye, f.Pose.Target
	return &debug.FrameRecord{
		Frame:     f.Index,
		Time:      f.Time,
		DT:        f.DT,
		Camera:    [3]float64{eye.X(), eye.Y(), eye.Z()},
		Target:    [3]float64{target.X(), target.Y(), target.Z()},
		Ground:    g.sampler.SampleHeight(eye.X(), eye.Z()),
		Tiles:     f.Stats.Tiles,
		Pending:   f.Stats.Pending,
		MinZ:      f.Stats.MinZ,
		MaxZ:      f.Stats.MaxZ,
		Span:      f.Stats.Span,
		Recycled:  f.Recycled,
		GapFilled: f.GapFilled,
	}
}

// Run drives the surface frame loop until ctx is cancelled, the user quits
// or a frame fails. Cancellation, whether by ctx or Close, is not an error.
func (g *Game) Run(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	if g.running {
		g.mu.Unlock()
		return errors.New("game: already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	g.cancel, g.done, g.running = cancel, done, true
	g.mu.Unlock()

	defer func() {
		cancel()
		g.mu.Lock()
		g.running = false
		g.mu.Unlock()
		close(done)
	}()

	g.log.Info("starting frame loop")
	err := g.surface.Loop(ctx, g.Tick)
	switch {
	case err == nil:
	case errors.Is(err, ErrClosed):
		// Close raced the frame; it cancels the loop right after.
		err = nil
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		err = nil
	}
	g.log.Info("frame loop stopped", zap.Int("frames", g.frame), zap.Error(err))
	return err
}

// Close stops the frame loop, waits for it to return, then releases the
// presenter and the tile meshes. It is safe to call more than once and
// from another goroutine than Run, but not from inside a frame.
func (g *Game) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	cancel, done := g.cancel, g.done
	g.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	g.release()
	g.log.Info("closed", zap.Int("frames", g.frame))
}

// release frees resources in dependency order. The loop must be stopped.
func (g *Game) release() {
	if g.presenter != nil {
		g.presenter.Release()
		g.presenter = nil
	}
	if g.grid != nil {
		g.grid.Release()
	}
	if g.tracer != nil {
		if err := g.tracer.Close(); err != nil {
			g.log.Warn("closing trace", zap.Error(err))
		}
		g.tracer = nil
	}
}

package game

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/cosine-terrain/internal/config"
	"github.com/Faultbox/cosine-terrain/internal/engine/debug"
	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Terrain.Frequency = 0.01
	cfg.Terrain.Amplitude = 20
	cfg.Terrain.TileSize = 100
	cfg.Terrain.Resolution = 4
	cfg.Streaming.TilesX = 3
	cfg.Streaming.TilesZ = 8
	cfg.Camera.Speed = 60
	cfg.Camera.LookAhead = 200
	cfg.Camera.Far = 2000
	return cfg
}

// recordingPresenter keeps per-frame tile counts.
type recordingPresenter struct {
	tiles    []int
	frames   []Frame
	released int
	err      error
}

func (p *recordingPresenter) Present(f Frame) error {
	p.tiles = append(p.tiles, len(f.Tiles))
	p.frames = append(p.frames, f)
	return p.err
}

func (p *recordingPresenter) Release() { p.released++ }

func TestEndToEndTravel(t *testing.T) {
	cfg := config.Default()
	cfg.Terrain.Frequency = 0.0001
	cfg.Terrain.Amplitude = 2000
	cfg.Terrain.TileSize = 2048
	cfg.Terrain.Resolution = 8
	cfg.Streaming.TilesZ = 32

	const distance = 10000.0
	frames := int(math.Ceil(distance / (cfg.Camera.Speed / 60)))
	surface := NewHeadlessSurface(1280, 720, frames)
	presenter := &NullPresenter{}

	core, logs := observer.New(zapcore.WarnLevel)
	g, err := New(cfg, surface, presenter, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	params, _ := cfg.TerrainParams()
	start := g.Grid().Len()
	bob := cfg.Camera.BobAmplitude

	for i := 0; i < frames; i++ {
		if err := g.Tick(surface.DT); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if n := g.Grid().Len(); n != start {
			t.Fatalf("frame %d: tile count changed from %d to %d", i, start, n)
		}

		pos := g.Camera().Position
		want := terrain.Height(pos.X(), pos.Z(), params)
		sampled := g.Sampler().SampleHeight(pos.X(), pos.Z())
		if math.Abs(sampled-want) > bob {
			t.Fatalf("frame %d: sampled %v, analytic %v", i, sampled, want)
		}
		if hover := pos.Y() - cfg.Camera.HoverHeight - want; math.Abs(hover) > bob+1e-9 {
			t.Fatalf("frame %d: eye is %v off its hover height", i, hover)
		}
	}

	if z := g.Camera().Position.Z(); z > -distance+1e-6 {
		t.Errorf("camera travelled to %v, want at least %v", z, -distance)
	}
	if presenter.Frames != frames {
		t.Errorf("presented %d frames, want %d", presenter.Frames, frames)
	}
	if s := presenter.Last.Stats; s.RecycledTotal == 0 || s.Emergencies != 0 {
		t.Errorf("expected recycling without emergencies, got %+v", s)
	}
	if n := logs.FilterMessage("coverage gap detected, creating emergency tile").Len(); n != 0 {
		t.Errorf("unexpected gap warnings: %d", n)
	}
}

func TestAutoColumns(t *testing.T) {
	cfg := smallConfig()
	cfg.Streaming.TilesX = 0

	g, err := New(cfg, NewHeadlessSurface(1280, 720, 1), &NullPresenter{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	want := terrain.ComputeTileColumns(1280, 720, cfg.Camera.FOV, cfg.Camera.Far, cfg.Terrain.TileSize, nil)
	if got := g.Grid().Config().TilesX; got != want {
		t.Errorf("TilesX = %d, want %d", got, want)
	}
	if g.Grid().Len() != want*cfg.Streaming.TilesZ {
		t.Errorf("expected %d tiles, got %d", want*cfg.Streaming.TilesZ, g.Grid().Len())
	}
}

func TestFrequencyWarning(t *testing.T) {
	tests := []struct {
		name      string
		frequency float64
		warn      bool
	}{
		{"fraction inside warning band", 2 * math.Pi / (100 * 5.5), true},
		{"whole-tile wavelength", 2 * math.Pi / (100 * 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			cfg.Terrain.Frequency = tt.frequency

			core, logs := observer.New(zapcore.WarnLevel)
			g, err := New(cfg, NewHeadlessSurface(640, 480, 1), &NullPresenter{}, WithLogger(zap.New(core)))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			g.Close()

			got := logs.FilterMessage("terrain frequency may cause tile boundary artifacts").Len() == 1
			if got != tt.warn {
				t.Errorf("warning logged = %v, want %v", got, tt.warn)
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Terrain.Frequency = 0
	p := &recordingPresenter{}

	g, err := New(cfg, NewHeadlessSurface(640, 480, 1), p)
	if err == nil || g != nil {
		t.Fatalf("expected error and nil game, got %v, %v", g, err)
	}
	if p.released != 1 {
		t.Errorf("presenter released %d times, want 1", p.released)
	}
}

func TestNewFailsOnBadTracePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig()
	cfg.Logging.TraceFile = filepath.Join(blocker, "trace.jsonl")
	p := &recordingPresenter{}
	if _, err := New(cfg, NewHeadlessSurface(640, 480, 1), p); err == nil {
		t.Fatal("expected trace error")
	}
	if p.released != 1 {
		t.Error("presenter should be released when New fails half way")
	}
}

func TestTickFrame(t *testing.T) {
	cfg := smallConfig()
	p := &recordingPresenter{}
	g, err := New(cfg, NewHeadlessSurface(800, 400, 0), p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	for i := 0; i < 3; i++ {
		if err := g.Tick(0.5); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if len(p.frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(p.frames))
	}
	f := p.frames[2]
	if f.Index != 2 || f.Time != 1.5 || f.DT != 0.5 {
		t.Errorf("unexpected frame timing: index %d time %v dt %v", f.Index, f.Time, f.DT)
	}
	if f.Width != 800 || f.Height != 400 {
		t.Errorf("unexpected frame size %dx%d", f.Width, f.Height)
	}
	if f.Pose.Eye.Z() != -90 {
		t.Errorf("eye Z = %v, want -90", f.Pose.Eye.Z())
	}
	if len(f.Tiles) != f.Stats.Tiles || f.Stats.Tiles != 24 {
		t.Errorf("frame tiles %d, stats %d, want 24", len(f.Tiles), f.Stats.Tiles)
	}
	// Recycling ran before the frame was built.
	for _, tile := range f.Tiles {
		if tile.WorldZ()-f.Pose.Eye.Z() > 100 {
			t.Errorf("tile %v is still behind the camera", tile.Coord)
		}
	}
}

func TestRunHeadless(t *testing.T) {
	p := &NullPresenter{}
	g, err := New(smallConfig(), NewHeadlessSurface(640, 480, 30), p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Frames != 30 {
		t.Errorf("presented %d frames, want 30", p.Frames)
	}
	g.Close()
	if !p.Released {
		t.Error("presenter not released")
	}
	if err := g.Run(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Run after Close = %v, want ErrClosed", err)
	}
	g.Close() // idempotent
}

func TestTickAfterClose(t *testing.T) {
	p := &NullPresenter{}
	g, err := New(smallConfig(), NewHeadlessSurface(640, 480, 1), p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Tick(1.0 / 60); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	g.Close()

	if err := g.Tick(1.0 / 60); !errors.Is(err, ErrClosed) {
		t.Errorf("Tick after Close = %v, want ErrClosed", err)
	}
	if p.Frames != 1 {
		t.Errorf("presented %d frames, want 1", p.Frames)
	}
}

func TestRunStopsOnPresentError(t *testing.T) {
	boom := errors.New("device lost")
	p := &recordingPresenter{err: boom}
	g, err := New(smallConfig(), NewHeadlessSurface(640, 480, 10), p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	if err := g.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want %v", err, boom)
	}
	if len(p.frames) != 1 {
		t.Errorf("expected the loop to stop after 1 frame, got %d", len(p.frames))
	}
}

func TestRunContextCancel(t *testing.T) {
	g, err := New(smallConfig(), NewHeadlessSurface(640, 480, 0), &NullPresenter{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); err != nil {
		t.Errorf("cancelled Run = %v, want nil", err)
	}
}

// event log shared by the teardown fakes.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, s)
}

func (e *events) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

type blockingSurface struct {
	ev      *events
	started chan struct{}
}

func (s *blockingSurface) Size() (int, int) { return 640, 480 }

func (s *blockingSurface) Loop(ctx context.Context, frame FrameFunc) error {
	if err := frame(1.0 / 60); err != nil {
		return err
	}
	close(s.started)
	<-ctx.Done()
	s.ev.add("loop stopped")
	return ctx.Err()
}

type eventPresenter struct{ ev *events }

func (p *eventPresenter) Present(Frame) error { return nil }
func (p *eventPresenter) Release()            { p.ev.add("presenter released") }

func TestCloseStopsLoopBeforeRelease(t *testing.T) {
	ev := &events{}
	surface := &blockingSurface{ev: ev, started: make(chan struct{})}
	g, err := New(smallConfig(), surface, &eventPresenter{ev: ev})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- g.Run(context.Background()) }()
	<-surface.started

	g.Close()
	if err := <-errc; err != nil {
		t.Errorf("Run = %v, want nil after Close", err)
	}

	got := ev.list()
	if len(got) != 2 || got[0] != "loop stopped" || got[1] != "presenter released" {
		t.Errorf("teardown order = %v", got)
	}
	if g.Grid().Len() != 0 {
		t.Error("tile meshes not released")
	}
}

func TestTraceFile(t *testing.T) {
	cfg := smallConfig()
	cfg.Logging.TraceFile = filepath.Join(t.TempDir(), "trace.jsonl")

	g, err := New(cfg, NewHeadlessSurface(640, 480, 12), &NullPresenter{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	g.Close()

	f, err := os.Open(cfg.Logging.TraceFile)
	if err != nil {
		t.Fatalf("opening trace: %v", err)
	}
	defer f.Close()

	recs, err := debug.ReadTrace(f)
	if err != nil {
		t.Fatalf("ReadTrace: %v", err)
	}
	if len(recs) != 12 {
		t.Fatalf("expected 12 records, got %d", len(recs))
	}
	last := recs[11]
	if last.Frame != 11 || last.Tiles != 24 {
		t.Errorf("unexpected last record: %+v", last)
	}
	if last.Camera[2] >= 0 {
		t.Errorf("camera should have moved toward -Z, got %v", last.Camera)
	}
}

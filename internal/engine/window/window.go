// Package window handles the SDL2 window, its OpenGL context and the
// real-time frame loop.
package window

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/cosine-terrain/internal/engine/input"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// maxFrameDT caps the simulated step after a stall (window drag, breakpoint)
// so the camera does not jump past the recycle budget.
const maxFrameDT = 0.1

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window wraps SDL2 window and OpenGL context.
type Window struct {
	config    Config
	log       *zap.Logger
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	input     *input.Input

	// OnKey is called for every key press during Loop.
	OnKey func(sdl.Scancode)
}

// New creates a new window with OpenGL context.
func New(cfg Config, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Window{
		config: cfg,
		log:    log,
		input:  input.New(),
	}

	log.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// We want OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	width, height := w.Size()
	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// Size returns the drawable size in pixels, which differs from the window
// size on high-DPI displays.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// Loop polls input, calls frame and swaps buffers until the window is
// closed, Escape is pressed, ctx is cancelled or frame fails.
func (w *Window) Loop(ctx context.Context, frame func(dt float64) error) error {
	last := time.Now()
	frames := 0
	fpsTimer := last

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if w.input.Update() {
			w.log.Info("quit requested")
			return nil
		}
		for _, ev := range w.input.Events() {
			switch ev.Type {
			case input.EventWindowResize:
				w.log.Debug("window resized", zap.Int("width", ev.Width), zap.Int("height", ev.Height))
			case input.EventKeyDown:
				if w.OnKey != nil {
					w.OnKey(ev.Key)
				}
			}
		}

		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now
		if dt > maxFrameDT {
			dt = maxFrameDT
		}

		if err := frame(dt); err != nil {
			return err
		}
		w.sdlWindow.GLSwap()

		frames++
		if since := time.Since(fpsTimer); since >= time.Second {
			w.log.Debug("fps", zap.Float64("fps", float64(frames)/since.Seconds()))
			frames = 0
			fpsTimer = time.Now()
		}
	}
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

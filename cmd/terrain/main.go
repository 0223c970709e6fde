// Package main is the entry point for the cosine terrain viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/cosine-terrain/internal/config"
	"github.com/Faultbox/cosine-terrain/internal/engine/renderer"
	"github.com/Faultbox/cosine-terrain/internal/engine/window"
	"github.com/Faultbox/cosine-terrain/internal/game"
	"github.com/Faultbox/cosine-terrain/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Cosine Terrain ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			logger.Warn("failed to save config", zap.Error(err))
		} else {
			logger.Info("config saved", zap.String("dir", config.ConfigDir()))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Graphics.Headless {
		return runHeadless(ctx, cfg)
	}

	win, err := window.New(window.Config{
		Title:      "Cosine Terrain",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Close()

	rcfg := renderer.DefaultConfig()
	rcfg.FogFar = float32(cfg.Camera.Far)
	rcfg.Overlay = cfg.Logging.Diagnostics
	r, err := renderer.New(rcfg, logger.Named("renderer"))
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	// The game owns the renderer from here on and must be closed before
	// the window drops the GL context.
	g, err := game.New(cfg, win, r, game.WithLogger(logger.Log))
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	defer g.Close()

	win.OnKey = func(key sdl.Scancode) {
		switch key {
		case sdl.SCANCODE_F1:
			r.ToggleWireframe()
		case sdl.SCANCODE_F3:
			r.ToggleOverlay()
		case sdl.SCANCODE_F4:
			r.ToggleBounds()
		}
	}

	return g.Run(ctx)
}

func runHeadless(ctx context.Context, cfg *config.Config) error {
	surface := game.NewHeadlessSurface(cfg.Graphics.Width, cfg.Graphics.Height, cfg.Graphics.Frames)
	presenter := &game.NullPresenter{}

	g, err := game.New(cfg, surface, presenter, game.WithLogger(logger.Log))
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		return err
	}

	state := g.Camera()
	stats := g.Grid().Stats()
	logger.Info("headless run finished",
		zap.Int("frames", presenter.Frames),
		zap.Float64("camera_z", state.Position.Z()),
		zap.Int("tiles", stats.Tiles),
		zap.Float64("span", stats.Span),
	)
	return nil
}

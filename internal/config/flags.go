package config

import (
	"flag"
	"strconv"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and coverage diagnostics")
	flagSeed       = flag.String("seed", "", "Height field phase offset")
	flagQuality    = flag.Int("quality", -1, "Quality level (0, 1 or 2)")
	flagSpeed      = flag.Float64("speed", -1, "Camera speed in world units per second (0 hovers)")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagHeadless   = flag.Bool("headless", false, "Simulate without opening a window")
	flagFrames     = flag.Int("frames", 0, "Frames to simulate in headless mode")
	flagTrace      = flag.String("trace", "", "Write a JSON-lines frame trace to this file")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether the effective config should be written
// back to the user config directory.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Diagnostics = true
	}
	if *flagSeed != "" {
		seed, err := strconv.ParseFloat(*flagSeed, 64)
		if err != nil {
			return err
		}
		cfg.Terrain.Seed = seed
	}
	if *flagQuality >= 0 {
		cfg.Terrain.Quality = *flagQuality
	}
	if *flagSpeed >= 0 {
		cfg.Camera.Speed = *flagSpeed
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagHeadless {
		cfg.Graphics.Headless = true
	}
	if *flagFrames > 0 {
		cfg.Graphics.Frames = *flagFrames
	}
	if *flagTrace != "" {
		cfg.Logging.TraceFile = *flagTrace
	}
	return nil
}

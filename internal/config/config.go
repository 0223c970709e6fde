// Package config handles terrain viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/cosine-terrain/internal/engine/camera"
	"github.com/Faultbox/cosine-terrain/internal/engine/streaming"
	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

// Config holds all viewer settings.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Streaming StreamingConfig `yaml:"streaming"`
	Camera    CameraConfig    `yaml:"camera"`
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TerrainConfig holds height field and mesh settings.
type TerrainConfig struct {
	Seed        float64         `yaml:"seed"`
	Frequency   float64         `yaml:"frequency"`
	Amplitude   float64         `yaml:"amplitude"`
	XMultiplier float64         `yaml:"x_multiplier"`
	ZMultiplier float64         `yaml:"z_multiplier"`
	Blend       string          `yaml:"blend"`
	Variation   VariationConfig `yaml:"variation"`
	TileSize    float64         `yaml:"tile_size"`
	Resolution  int             `yaml:"resolution"`
	Quality     int             `yaml:"quality"`
}

// VariationConfig holds amplitude variation settings.
type VariationConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"`
	Intensity float64 `yaml:"intensity"`
}

// StreamingConfig holds tile grid settings.
type StreamingConfig struct {
	TilesX             ColumnCount `yaml:"tiles_x"`
	TilesZ             int         `yaml:"tiles_z"`
	RecyclingFactor    float64     `yaml:"recycling_factor"`
	BufferDistance     float64     `yaml:"buffer_distance"`
	MaxRecyclePerFrame int         `yaml:"max_recycle_per_frame"`
	GapDetection       bool        `yaml:"gap_detection"`
}

// CameraConfig holds flight and projection settings.
type CameraConfig struct {
	Speed           float64 `yaml:"speed"`
	HoverHeight     float64 `yaml:"hover_height"`
	FollowTerrain   bool    `yaml:"follow_terrain"`
	FixedHeight     float64 `yaml:"fixed_height"`
	LookAhead       float64 `yaml:"look_ahead"`
	LookAtHeight    float64 `yaml:"look_at_height"`
	BobAmplitude    float64 `yaml:"bob_amplitude"`
	BobFrequency    float64 `yaml:"bob_frequency"`
	Smoothing       float64 `yaml:"smoothing"`
	MaxVerticalStep float64 `yaml:"max_vertical_step"`
	FOV             float64 `yaml:"fov"`
	Near            float64 `yaml:"near"`
	Far             float64 `yaml:"far"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Headless   bool `yaml:"headless"`
	Frames     int  `yaml:"frames"` // frames to simulate in headless mode
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogFile     string `yaml:"log_file"`
	Diagnostics bool   `yaml:"diagnostics"` // periodic coverage summaries
	TraceFile   string `yaml:"trace_file"`  // JSON-lines frame trace
}

// ColumnCount is a tile column count that may be "auto" in YAML.
// Zero means auto: derive it from the viewport and frustum.
type ColumnCount int

// Auto reports whether the column count is derived at startup.
func (c ColumnCount) Auto() bool {
	return c <= 0
}

// UnmarshalYAML accepts either "auto" or a positive integer.
func (c *ColumnCount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: tiles_x must be \"auto\" or an integer", value.Line)
	}
	s := strings.TrimSpace(value.Value)
	if strings.EqualFold(s, "auto") || s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("line %d: tiles_x must be \"auto\" or an integer >= 1, got %q", value.Line, s)
	}
	*c = ColumnCount(n)
	return nil
}

// MarshalYAML writes "auto" for a derived column count.
func (c ColumnCount) MarshalYAML() (interface{}, error) {
	if c.Auto() {
		return "auto", nil
	}
	return int(c), nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	params := terrain.DefaultParams()
	grid := streaming.DefaultConfig()
	cam := camera.DefaultConfig()

	return &Config{
		Terrain: TerrainConfig{
			Seed:        params.Seed,
			Frequency:   params.Frequency,
			Amplitude:   params.Amplitude,
			XMultiplier: params.XMult,
			ZMultiplier: params.ZMult,
			Blend:       params.Blend.String(),
			Variation: VariationConfig{
				Enabled:   params.Variation.Enabled,
				Frequency: params.Variation.Frequency,
				Intensity: params.Variation.Intensity,
			},
			TileSize:   params.Edge,
			Resolution: params.Resolution,
			Quality:    int(grid.Quality),
		},
		Streaming: StreamingConfig{
			TilesX:             0,
			TilesZ:             grid.TilesZ,
			RecyclingFactor:    grid.RecyclingFactor,
			BufferDistance:     grid.BufferDistance,
			MaxRecyclePerFrame: grid.MaxRecyclePerFrame,
			GapDetection:       grid.GapDetection,
		},
		Camera: CameraConfig{
			Speed:           cam.Speed,
			HoverHeight:     cam.HoverHeight,
			FollowTerrain:   cam.FollowTerrain,
			FixedHeight:     cam.FixedHeight,
			LookAhead:       cam.LookAhead,
			LookAtHeight:    cam.LookAtHeight,
			BobAmplitude:    cam.BobAmplitude,
			BobFrequency:    cam.BobFrequency,
			Smoothing:       cam.Smoothing,
			MaxVerticalStep: cam.MaxVerticalStep,
			FOV:             cam.FOV,
			Near:            cam.Near,
			Far:             cam.Far,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Headless:   false,
			Frames:     600,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// TerrainParams converts the terrain section to height field parameters.
func (c *Config) TerrainParams() (terrain.Params, error) {
	blend, err := terrain.ParseBlendMode(c.Terrain.Blend)
	if err != nil {
		return terrain.Params{}, err
	}
	return terrain.Params{
		Frequency: c.Terrain.Frequency,
		Amplitude: c.Terrain.Amplitude,
		XMult:     c.Terrain.XMultiplier,
		ZMult:     c.Terrain.ZMultiplier,
		Blend:     blend,
		Variation: terrain.Variation{
			Enabled:   c.Terrain.Variation.Enabled,
			Frequency: c.Terrain.Variation.Frequency,
			Intensity: c.Terrain.Variation.Intensity,
		},
		Seed:       c.Terrain.Seed,
		Edge:       c.Terrain.TileSize,
		Resolution: c.Terrain.Resolution,
	}, nil
}

// GridConfig converts the terrain and streaming sections to a tile grid
// configuration. tilesX replaces an "auto" column count.
func (c *Config) GridConfig(tilesX int) (streaming.Config, error) {
	params, err := c.TerrainParams()
	if err != nil {
		return streaming.Config{}, err
	}
	if !c.Streaming.TilesX.Auto() {
		tilesX = int(c.Streaming.TilesX)
	}
	return streaming.Config{
		Params:             params,
		Quality:            terrain.Quality(c.Terrain.Quality),
		TilesX:             tilesX,
		TilesZ:             c.Streaming.TilesZ,
		RecyclingFactor:    c.Streaming.RecyclingFactor,
		BufferDistance:     c.Streaming.BufferDistance,
		MaxRecyclePerFrame: c.Streaming.MaxRecyclePerFrame,
		GapDetection:       c.Streaming.GapDetection,
		Diagnostics:        c.Logging.Diagnostics,
	}, nil
}

// CameraConfig converts the camera section to controller settings.
func (c *Config) CameraConfig() camera.Config {
	return camera.Config{
		Speed:           c.Camera.Speed,
		HoverHeight:     c.Camera.HoverHeight,
		FollowTerrain:   c.Camera.FollowTerrain,
		FixedHeight:     c.Camera.FixedHeight,
		LookAhead:       c.Camera.LookAhead,
		LookAtHeight:    c.Camera.LookAtHeight,
		BobAmplitude:    c.Camera.BobAmplitude,
		BobFrequency:    c.Camera.BobFrequency,
		Smoothing:       c.Camera.Smoothing,
		MaxVerticalStep: c.Camera.MaxVerticalStep,
		FOV:             c.Camera.FOV,
		Near:            c.Camera.Near,
		Far:             c.Camera.Far,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	// Column count does not matter here; auto is resolved later.
	grid, err := c.GridConfig(1)
	if err != nil {
		errs = append(errs, fmt.Errorf("terrain: %w", err))
	} else if err := grid.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("terrain: %w", err))
	}
	if err := c.CameraConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	}
	if c.Graphics.Width < 1 || c.Graphics.Height < 1 {
		errs = append(errs, fmt.Errorf("graphics: window size must be positive, got %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.Headless && c.Graphics.Frames < 1 {
		errs = append(errs, fmt.Errorf("graphics: headless mode needs frames >= 1, got %d", c.Graphics.Frames))
	}
	return errors.Join(errs...)
}

// Package camera drives the viewpoint across the terrain.
package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HeightSampler reports surface elevation at a world point.
type HeightSampler interface {
	SampleHeight(x, z float64) float64
}

// flatGround is used when no sampler is supplied.
type flatGround struct{}

func (flatGround) SampleHeight(float64, float64) float64 { return 0 }

// State is the camera state mutated by a Controller. It is owned by the
// caller and borrowed by the controller.
type State struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Time     float64 // accumulated simulation time, seconds
}

// Config holds flight and projection settings.
type Config struct {
	Speed         float64 // world units per second toward -Z
	HoverHeight   float64
	FollowTerrain bool
	FixedHeight   float64 // eye height when not following the terrain

	LookAhead    float64 // distance of the look-at point ahead of the eye
	LookAtHeight float64 // added to the terrain elevation at the look-at point

	BobAmplitude float64
	BobFrequency float64 // radians per second

	// Smoothing is the per-frame lerp factor toward the target height.
	// Zero snaps directly to the target.
	Smoothing float64
	// MaxVerticalStep bounds the smoothed height change per frame. Zero
	// means unbounded.
	MaxVerticalStep float64

	FOV  float64 // vertical field of view, degrees
	Near float64
	Far  float64
}

// DefaultConfig returns the default flight settings.
func DefaultConfig() Config {
	return Config{
		Speed:         400,
		HoverHeight:   300,
		FollowTerrain: true,
		FixedHeight:   1500,
		LookAhead:     2000,
		BobAmplitude:  5,
		BobFrequency:  0.5,
		FOV:           75,
		Near:          1,
		Far:           60000,
	}
}

// Validate checks the camera configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Speed < 0 {
		errs = append(errs, fmt.Errorf("speed must be >= 0, got %v", c.Speed))
	}
	if !(c.LookAhead > 0) {
		errs = append(errs, fmt.Errorf("look ahead must be > 0, got %v", c.LookAhead))
	}
	if c.Smoothing < 0 || c.Smoothing > 1 {
		errs = append(errs, fmt.Errorf("smoothing must be in [0, 1], got %v", c.Smoothing))
	}
	if c.MaxVerticalStep < 0 {
		errs = append(errs, fmt.Errorf("max vertical step must be >= 0, got %v", c.MaxVerticalStep))
	}
	if !(c.FOV > 0 && c.FOV < 180) {
		errs = append(errs, fmt.Errorf("fov must be in (0, 180), got %v", c.FOV))
	}
	if !(c.Near > 0) || !(c.Far > c.Near) {
		errs = append(errs, fmt.Errorf("clip planes must satisfy 0 < near < far, got %v/%v", c.Near, c.Far))
	}
	return errors.Join(errs...)
}

// Pose is the camera orientation handed to the presenter.
type Pose struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
	View   mgl64.Mat4
}

// Controller advances a State over the terrain once per tick.
type Controller struct {
	cfg     Config
	sampler HeightSampler
	state   *State
}

// NewController creates a controller for state. A nil sampler is treated as
// flat ground at zero; a nil state is allocated. The eye is placed at its
// target height immediately so the first frame does not start underground.
func NewController(cfg Config, sampler HeightSampler, state *State) *Controller {
	if sampler == nil {
		sampler = flatGround{}
	}
	if state == nil {
		state = &State{}
	}
	c := &Controller{cfg: cfg, sampler: sampler, state: state}
	c.state.Position[1] = c.targetHeight()
	c.aim()
	return c
}

// State returns the borrowed camera state.
func (c *Controller) State() *State {
	return c.state
}

// Update advances the camera by dt seconds.
func (c *Controller) Update(dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	s := c.state
	s.Time += dt
	s.Position[2] -= c.cfg.Speed * dt
	s.Position[1] = c.approach(s.Position.Y(), c.targetHeight())
	c.aim()
}

// targetHeight is the eye height the camera wants at its current position.
func (c *Controller) targetHeight() float64 {
	if !c.cfg.FollowTerrain {
		return c.cfg.FixedHeight
	}
	s := c.state
	ground := c.sampler.SampleHeight(s.Position.X(), s.Position.Z())
	bob := math.Sin(s.Time*c.cfg.BobFrequency) * c.cfg.BobAmplitude
	return ground + c.cfg.HoverHeight + bob
}

func (c *Controller) approach(y, target float64) float64 {
	if c.cfg.Smoothing <= 0 {
		return target
	}
	step := (target - y) * c.cfg.Smoothing
	if limit := c.cfg.MaxVerticalStep; limit > 0 {
		step = math.Max(-limit, math.Min(limit, step))
	}
	return y + step
}

// aim points the camera at the look-ahead point.
func (c *Controller) aim() {
	s := c.state
	x := s.Position.X()
	z := s.Position.Z() - c.cfg.LookAhead
	s.Target = mgl64.Vec3{x, c.sampler.SampleHeight(x, z) + c.cfg.LookAtHeight, z}
}

// Pose returns the current eye, look-at point and view matrix.
func (c *Controller) Pose() Pose {
	up := mgl64.Vec3{0, 1, 0}
	return Pose{
		Eye:    c.state.Position,
		Target: c.state.Target,
		Up:     up,
		View:   mgl64.LookAtV(c.state.Position, c.state.Target, up),
	}
}

// Projection returns a perspective matrix. fov is the vertical field of
// view in degrees.
func Projection(fov, aspect, near, far float64) mgl64.Mat4 {
	if !(aspect > 0) {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(fov), aspect, near, far)
}

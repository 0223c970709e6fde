package terrain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// BlendMode selects how the X and Z cosine waves are combined.
type BlendMode int

const (
	// BlendMultiplicative multiplies the two axis waves (egg-crate surface).
	BlendMultiplicative BlendMode = iota
	// BlendAdditive averages the two axis waves (ridged surface).
	BlendAdditive
)

// String returns the config name of the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendAdditive:
		return "additive"
	default:
		return "multiplicative"
	}
}

// ParseBlendMode converts a config string to a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiplicative", "multiply", "":
		return BlendMultiplicative, nil
	case "additive", "add":
		return BlendAdditive, nil
	}
	return 0, fmt.Errorf("unknown blend mode %q", s)
}

// Quality trades seam fidelity for per-frame cost.
type Quality int

const (
	// QualityGeometry samples via tile geometry and builds tiles from
	// float32 buffer coordinates. Tile edges may not match exactly.
	QualityGeometry Quality = 0
	// QualityShared builds tiles analytically in world space with exact
	// shared edges, but still samples via geometry.
	QualityShared Quality = 1
	// QualityAnalytic re-evaluates the height function on every sample and
	// on every recycle.
	QualityAnalytic Quality = 2
)

// Valid reports whether q is a known quality level.
func (q Quality) Valid() bool {
	return q >= QualityGeometry && q <= QualityAnalytic
}

// Variation configures the low-frequency amplitude modulation term.
type Variation struct {
	Enabled   bool
	Frequency float64
	Intensity float64
}

// Params holds the height field and tile geometry settings.
type Params struct {
	Frequency  float64
	Amplitude  float64
	XMult      float64
	ZMult      float64
	Blend      BlendMode
	Variation  Variation
	Seed       float64
	Edge       float64 // tile edge length in world units
	Resolution int     // segments per tile edge
}

// DefaultParams returns the settings of the large rolling-hills preset.
func DefaultParams() Params {
	return Params{
		Frequency:  0.0001,
		Amplitude:  2000,
		XMult:      1,
		ZMult:      1,
		Blend:      BlendMultiplicative,
		Variation:  Variation{Enabled: false, Frequency: 0.00002, Intensity: 0.3},
		Seed:       0,
		Edge:       2048,
		Resolution: 8,
	}
}

// Validate rejects parameters that would break the height field or mesh.
func (p Params) Validate() error {
	var errs []error
	if !(p.Frequency > 0) {
		errs = append(errs, fmt.Errorf("frequency must be > 0, got %v", p.Frequency))
	}
	if !(p.Edge > 0) {
		errs = append(errs, fmt.Errorf("tile edge must be > 0, got %v", p.Edge))
	}
	if p.Resolution < 2 {
		errs = append(errs, fmt.Errorf("resolution must be >= 2, got %d", p.Resolution))
	}
	if p.Variation.Enabled && !(p.Variation.Frequency > 0) {
		errs = append(errs, fmt.Errorf("variation frequency must be > 0, got %v", p.Variation.Frequency))
	}
	return errors.Join(errs...)
}

// Bound returns the largest |height| the surface can reach with variation off.
func (p Params) Bound() float64 {
	amp := math.Abs(p.Amplitude)
	if p.Blend == BlendAdditive {
		return (math.Abs(p.XMult) + math.Abs(p.ZMult)) * amp * 0.5
	}
	return math.Abs(p.XMult*p.ZMult) * amp
}

// Height evaluates the surface elevation at a world-space point.
func Height(worldX, worldZ float64, p Params) float64 {
	amp := p.Amplitude
	if p.Variation.Enabled {
		vf := p.Variation.Frequency
		amp *= 1 + p.Variation.Intensity*
			math.Sin(worldX*vf+p.Seed*0.7)*math.Cos(worldZ*vf+p.Seed*1.3)
	}

	wx := p.XMult * math.Cos(worldX*p.Frequency+p.Seed)
	wz := p.ZMult * math.Cos(worldZ*p.Frequency+p.Seed)

	if p.Blend == BlendAdditive {
		return (wx + wz) * amp * 0.5
	}
	return wx * wz * amp
}

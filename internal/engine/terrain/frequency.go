package terrain

import (
	"fmt"
	"math"
)

// Fraction band in which a wavelength/edge ratio is considered seam-prone.
const (
	seamFracLow  = 0.2
	seamFracHigh = 0.8
)

// FrequencyWarning describes a frequency whose wavelength does not tile
// cleanly against the tile edge.
type FrequencyWarning struct {
	Frequency  float64
	Edge       float64
	Wavelength float64
	Ratio      float64
	Fraction   float64
}

func (w *FrequencyWarning) String() string {
	return fmt.Sprintf(
		"frequency %g gives wavelength %.2f = %.3f tiles of %g; fractional part %.3f may show tile seams",
		w.Frequency, w.Wavelength, w.Ratio, w.Edge, w.Fraction)
}

// ValidateFrequency checks how many wave cycles fit a tile.
// Returns nil when the ratio is close to an integer; advisory only.
func ValidateFrequency(frequency, edge float64) *FrequencyWarning {
	if frequency <= 0 || edge <= 0 {
		return nil
	}
	wavelength := 2 * math.Pi / frequency
	ratio := wavelength / edge
	frac := ratio - math.Floor(ratio)
	if frac > seamFracLow && frac < seamFracHigh {
		return &FrequencyWarning{
			Frequency:  frequency,
			Edge:       edge,
			Wavelength: wavelength,
			Ratio:      ratio,
			Fraction:   frac,
		}
	}
	return nil
}

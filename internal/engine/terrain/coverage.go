package terrain

import (
	"math"

	"go.uber.org/zap"
)

// ComputeTileColumns returns how many tile columns are needed to span the
// view frustum at the far plane. fovDeg is the vertical field of view in
// degrees; the result is scaled by the viewport aspect ratio.
func ComputeTileColumns(width, height int, fovDeg, far, edge float64, log *zap.Logger) int {
	if edge <= 0 || far <= 0 || fovDeg <= 0 {
		return 1
	}
	aspect := 1.0
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}

	extent := 2 * math.Tan(fovDeg*math.Pi/360) * far
	base := math.Ceil(extent / edge)
	columns := int(math.Ceil(base * aspect))
	if columns < 1 {
		columns = 1
	}

	if log != nil {
		log.Debug("computed tile columns",
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Float64("fov", fovDeg),
			zap.Float64("far", far),
			zap.Float64("extent", extent),
			zap.Float64("base", base),
			zap.Int("columns", columns),
		)
	}
	return columns
}

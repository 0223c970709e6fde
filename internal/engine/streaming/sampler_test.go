package streaming

import (
	"math"
	"testing"

	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

func samplerConfig(q terrain.Quality) Config {
	cfg := smallConfig()
	cfg.Quality = q
	cfg.Params.Resolution = 32
	return cfg
}

func TestSamplerAnalyticMatchesHeight(t *testing.T) {
	cfg := samplerConfig(terrain.QualityAnalytic)
	s := NewSampler(mustGrid(t, cfg))

	for _, p := range [][2]float64{{0, 0}, {12.5, -333.3}, {1e5, -7e4}} {
		want := terrain.Height(p[0], p[1], cfg.Params)
		if got := s.SampleHeight(p[0], p[1]); got != want {
			t.Errorf("SampleHeight(%v, %v) = %v, want %v", p[0], p[1], got, want)
		}
	}
}

func TestSamplerGeometryAgreesWithAnalytic(t *testing.T) {
	for _, q := range []terrain.Quality{terrain.QualityGeometry, terrain.QualityShared} {
		cfg := samplerConfig(q)
		g := mustGrid(t, cfg)
		s := NewSampler(g)

		// Interior points of the tiles around the camera.
		for x := -140.0; x <= 140; x += 13.7 {
			for z := 90.0; z >= -300; z -= 17.3 {
				want := terrain.Height(x, z, cfg.Params)
				got := s.SampleHeight(x, z)
				if math.Abs(got-want) > 0.05 {
					t.Fatalf("quality %d: SampleHeight(%v, %v) = %v, analytic %v", q, x, z, got, want)
				}
			}
		}
	}
}

func TestSamplerErrorAtSeams(t *testing.T) {
	cfg := samplerConfig(terrain.QualityGeometry)
	g := mustGrid(t, cfg)
	s := NewSampler(g)

	edge := cfg.Params.Edge
	step := edge / float64(cfg.Params.Resolution)
	maxErr := func(points [][2]float64) float64 {
		worst := 0.0
		for _, p := range points {
			d := math.Abs(s.SampleHeight(p[0], p[1]) - terrain.Height(p[0], p[1], cfg.Params))
			worst = max(worst, d)
		}
		return worst
	}

	// Tile (0,-1) spans x in [-50, 50], z in [-150, -50]. Its shared edge
	// with (1,-1) lies at x = 50.
	var interior, seam [][2]float64
	for z := -150 + step/2; z < -50; z += step {
		interior = append(interior, [2]float64{step / 2, z})
		seam = append(seam, [2]float64{edge / 2, z})
	}
	interiorErr, seamErr := maxErr(interior), maxErr(seam)

	// Seam points lie on a shared vertex line, so only the along-edge
	// interpolation contributes; cell centres carry the full bilinear error.
	if seamErr > interiorErr+1e-4 {
		t.Errorf("seam error %v exceeds interior error %v", seamErr, interiorErr)
	}
	if interiorErr > 0.05 {
		t.Errorf("interior error %v above tolerance", interiorErr)
	}

	// Both tiles meeting at the seam report the same surface.
	for _, p := range seam {
		left := s.SampleHeight(p[0]-1e-6, p[1])
		right := s.SampleHeight(p[0]+1e-6, p[1])
		if math.Abs(left-right) > 1e-3 {
			t.Errorf("discontinuity at seam z=%v: %v vs %v", p[1], left, right)
		}
	}
}

func TestSamplerExactAtVertices(t *testing.T) {
	cfg := samplerConfig(terrain.QualityShared)
	g := mustGrid(t, cfg)
	s := NewSampler(g)

	tile := g.At(0, -2)
	stride := tile.Mesh.Stride()
	for iz := 0; iz < stride; iz += 5 {
		for ix := 0; ix < stride; ix += 5 {
			v := tile.Mesh.Vertices[iz*stride+ix].Position
			x := tile.WorldX() + float64(v[0])
			z := tile.WorldZ() + float64(v[2])
			if got := s.SampleHeight(x, z); math.Abs(got-float64(v[1])) > 1e-3 {
				t.Errorf("vertex (%d,%d): sampled %v, stored %v", ix, iz, got, v[1])
			}
		}
	}
}

func TestSamplerFollowsStaleGeometry(t *testing.T) {
	cfg := samplerConfig(terrain.QualityGeometry)
	cfg.TilesX = 1
	g := mustGrid(t, cfg)
	s := NewSampler(g)

	// Recycled tiles keep their old vertices below quality 2, and the
	// sampler reports what is drawn.
	tile := g.At(0, 1)
	old := tile.Mesh.HeightAt(16, 16)
	g.Recycle(-1)

	got := s.SampleHeight(tile.WorldX(), tile.WorldZ())
	if math.Abs(got-float64(old)) > 1e-3 {
		t.Errorf("sampled %v at recycled tile centre, want stored %v", got, old)
	}
}

func TestSamplerFallsBackOutsideGrid(t *testing.T) {
	cfg := samplerConfig(terrain.QualityGeometry)
	s := NewSampler(mustGrid(t, cfg))

	x, z := 1e6, 1e6
	want := terrain.Height(x, z, cfg.Params)
	if got := s.SampleHeight(x, z); got != want {
		t.Errorf("far point: got %v, want analytic %v", got, want)
	}
}

func TestSamplerNearestTileJustOutside(t *testing.T) {
	cfg := samplerConfig(terrain.QualityShared)
	g := mustGrid(t, cfg)
	s := NewSampler(g)

	// Past the left edge of the grid (columns -1..1, edge 100): the nearest
	// tile is used with clamped UV, so the value equals its border vertex.
	tile := g.At(-1, 0)
	x := tile.WorldX() - cfg.Params.Edge/2 - 10
	got := s.SampleHeight(x, 0)
	u, v := tile.UV(x, 0)
	want := terrain.InterpolateGrid(tile.Mesh, float32(u), float32(v))
	if math.Abs(got-float64(want)) > 1e-6 {
		t.Errorf("nearest-tile sample = %v, want %v", got, want)
	}
}

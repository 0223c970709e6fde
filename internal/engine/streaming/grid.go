package streaming

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

// Config holds tile grid settings.
type Config struct {
	Params  terrain.Params
	Quality terrain.Quality

	TilesX int // columns across the travel axis
	TilesZ int // rows along the travel axis

	// RecyclingFactor is the distance behind the camera, in tile edges,
	// after which a tile is moved to the front.
	RecyclingFactor float64
	// BufferDistance is the look-ahead, in tile edges, used by gap detection.
	BufferDistance float64
	// MaxRecyclePerFrame caps the tiles moved per Recycle call.
	MaxRecyclePerFrame int
	GapDetection       bool
	Diagnostics        bool

	// StartZ is the camera Z the grid is initially laid out around.
	StartZ float64
}

// DefaultConfig returns grid settings matching terrain.DefaultParams.
func DefaultConfig() Config {
	return Config{
		Params:             terrain.DefaultParams(),
		Quality:            terrain.QualityAnalytic,
		TilesX:             9,
		TilesZ:             32,
		RecyclingFactor:    1.0,
		BufferDistance:     2,
		MaxRecyclePerFrame: 8,
		GapDetection:       true,
	}
}

// Validate checks the grid configuration.
func (c Config) Validate() error {
	var errs []error
	if err := c.Params.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !c.Quality.Valid() {
		errs = append(errs, fmt.Errorf("quality must be 0, 1 or 2, got %d", c.Quality))
	}
	if c.TilesX < 1 {
		errs = append(errs, fmt.Errorf("tiles_x must be >= 1, got %d", c.TilesX))
	}
	if c.TilesZ < 2 {
		errs = append(errs, fmt.Errorf("tiles_z must be >= 2, got %d", c.TilesZ))
	}
	if c.RecyclingFactor < 0 {
		errs = append(errs, fmt.Errorf("recycling factor must be >= 0, got %v", c.RecyclingFactor))
	}
	if c.MaxRecyclePerFrame < 1 {
		errs = append(errs, fmt.Errorf("max recycle per frame must be >= 1, got %d", c.MaxRecyclePerFrame))
	}
	return errors.Join(errs...)
}

// Grid owns the live terrain tiles and keeps them in a band around the
// camera. Only one goroutine may use a Grid.
type Grid struct {
	cfg  Config
	log  *zap.Logger
	pool *Pool

	tiles []*Tile
	index map[Coord]*Tile

	recycledTotal int
	emergencies   int
	superseded    int
	summaryBucket int
}

// NewGrid validates cfg and lays out TilesX × TilesZ tiles ahead of StartZ.
func NewGrid(cfg Config, log *zap.Logger) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	g := &Grid{
		cfg:           cfg,
		log:           log,
		pool:          NewPool(),
		tiles:         make([]*Tile, 0, cfg.TilesX*cfg.TilesZ),
		index:         make(map[Coord]*Tile, cfg.TilesX*cfg.TilesZ),
		summaryBucket: -1,
	}

	// One row behind the camera, the rest ahead of it (toward -Z).
	backRow := int(math.Round(cfg.StartZ/cfg.Params.Edge)) + 1
	firstCol := -(cfg.TilesX / 2)
	for row := 0; row < cfg.TilesZ; row++ {
		for col := 0; col < cfg.TilesX; col++ {
			g.addTile(Coord{X: firstCol + col, Z: backRow - row}, false)
		}
	}

	log.Debug("tile grid created",
		zap.Int("tilesX", cfg.TilesX),
		zap.Int("tilesZ", cfg.TilesZ),
		zap.Int("quality", int(cfg.Quality)),
		zap.Float64("edge", cfg.Params.Edge),
		zap.Int("resolution", cfg.Params.Resolution),
	)
	return g, nil
}

// Config returns the grid configuration.
func (g *Grid) Config() Config {
	return g.cfg
}

// Pool returns the mesh pool owned by the grid.
func (g *Grid) Pool() *Pool {
	return g.pool
}

// Tiles returns the live tiles in grid order. The slice is a copy; the
// tiles and their meshes must be treated as read-only.
func (g *Grid) Tiles() []*Tile {
	out := make([]*Tile, len(g.tiles))
	copy(out, g.tiles)
	return out
}

// Len returns the number of live tiles.
func (g *Grid) Len() int {
	return len(g.tiles)
}

// At returns the tile at a grid coordinate, or nil.
func (g *Grid) At(x, z int) *Tile {
	return g.index[Coord{X: x, Z: z}]
}

// addTile acquires a mesh from the pool and places a new tile at c.
// The caller guarantees c is free.
func (g *Grid) addTile(c Coord, emergency bool) *Tile {
	p := g.cfg.Params
	mesh := g.pool.Acquire(p.Resolution, p.Edge)
	terrain.FillTile(mesh, c.X, c.Z, p, g.cfg.Quality)

	t := &Tile{Coord: c, Mesh: mesh, Emergency: emergency, Version: 1}
	g.tiles = append(g.tiles, t)
	g.index[c] = t
	return t
}

// Recycle moves tiles that fell more than RecyclingFactor edges behind the
// camera forward by TilesZ rows, at most MaxRecyclePerFrame per call.
// Returns how many tiles were handled this call.
func (g *Grid) Recycle(cameraZ float64) int {
	edge := g.cfg.Params.Edge
	threshold := edge * g.cfg.RecyclingFactor
	shift := g.cfg.TilesZ

	recycled := 0
	for i := 0; i < len(g.tiles); {
		t := g.tiles[i]
		if t.WorldZ()-cameraZ <= threshold {
			t.State = TileActive
			i++
			continue
		}
		if recycled >= g.cfg.MaxRecyclePerFrame {
			t.State = TilePendingRecycle
			i++
			continue
		}

		dest := Coord{X: t.X, Z: t.Z - shift}
		if _, taken := g.index[dest]; taken {
			// An emergency tile already covers the destination.
			g.removeAt(i)
			g.superseded++
			recycled++
			continue
		}

		delete(g.index, t.Coord)
		t.Coord = dest
		g.index[dest] = t
		t.State = TileActive
		if g.cfg.Quality >= terrain.QualityAnalytic {
			terrain.FillTile(t.Mesh, t.X, t.Z, g.cfg.Params, g.cfg.Quality)
			t.Version++
		}
		recycled++
		i++
	}

	g.recycledTotal += recycled
	return recycled
}

// removeAt drops the tile at slice position i and returns its mesh to the pool.
func (g *Grid) removeAt(i int) {
	t := g.tiles[i]
	delete(g.index, t.Coord)
	g.tiles = append(g.tiles[:i], g.tiles[i+1:]...)
	g.pool.Release(t.Mesh)
	t.Mesh = nil
}

// Release returns every tile mesh to the pool and empties the grid.
// The grid must not be used afterwards.
func (g *Grid) Release() {
	for _, t := range g.tiles {
		g.pool.Release(t.Mesh)
		t.Mesh = nil
	}
	g.tiles = nil
	g.index = make(map[Coord]*Tile)
	g.pool.Drain()
}

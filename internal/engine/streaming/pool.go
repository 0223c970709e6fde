package streaming

import (
	"github.com/Faultbox/cosine-terrain/internal/engine/terrain"
)

// Pool recycles tile mesh buffers keyed by resolution.
//
// A mesh returned by Acquire is borrowed by the caller until it is handed
// back with Release; after Release the caller must not touch it again.
// A Pool is owned by a single Grid and is not safe for concurrent use.
type Pool struct {
	free      map[int][]*terrain.Mesh
	allocated int
	reused    int
}

// NewPool creates an empty mesh pool.
func NewPool() *Pool {
	return &Pool{
		free: make(map[int][]*terrain.Mesh),
	}
}

// Acquire returns a mesh buffer for the given resolution and edge length,
// reusing a released one when available.
func (p *Pool) Acquire(resolution int, edge float64) *terrain.Mesh {
	if list := p.free[resolution]; len(list) > 0 {
		m := list[len(list)-1]
		list[len(list)-1] = nil
		p.free[resolution] = list[:len(list)-1]
		m.Edge = edge
		p.reused++
		return m
	}
	p.allocated++
	return terrain.NewMesh(resolution, edge)
}

// Release returns a mesh buffer to the pool.
func (p *Pool) Release(m *terrain.Mesh) {
	if m == nil {
		return
	}
	p.free[m.Resolution] = append(p.free[m.Resolution], m)
}

// Free returns the number of idle buffers for a resolution.
func (p *Pool) Free(resolution int) int {
	return len(p.free[resolution])
}

// Allocated returns how many buffers the pool has created.
func (p *Pool) Allocated() int {
	return p.allocated
}

// Reused returns how many Acquire calls were served from released buffers.
func (p *Pool) Reused() int {
	return p.reused
}

// Drain drops every idle buffer.
func (p *Pool) Drain() {
	for k := range p.free {
		delete(p.free, k)
	}
}

// Package raymarch walks rays through the voxel grid with a 3D DDA, leaping
// over cells whose distance field certifies the surrounding space as empty.
package raymarch

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"voxray/engine/world"
)

// Grid is the read side of a voxel world. *world.World satisfies it.
type Grid interface {
	ChunkExistsAt(x, y, z int) bool
	DistanceAt(x, y, z int) uint8
	VoxelAt(x, y, z int) (world.Voxel, bool)
	Bounds() (world.Box, bool)
}

// Hit is the result of a cast. Steps is set on misses too.
type Hit struct {
	Voxel world.Voxel
	Cell  [3]int
	Steps int
}

const (
	// entryEpsilon moves a clipped origin past the face it entered through.
	entryEpsilon = 1e-4
	// stepEpsilon absorbs float error in ceil(d/|dir|).
	stepEpsilon = 1e-4
)

// Marcher casts rays against a Grid. The grid's bounds are read once, so a
// Marcher must be rebuilt after chunks are inserted.
type Marcher struct {
	grid   Grid
	box    world.Box
	hasBox bool
}

func New(g Grid) *Marcher {
	box, ok := g.Bounds()
	return &Marcher{grid: g, box: box, hasBox: ok}
}

// Cast marches from origin along dir for at most maxSteps single-axis steps.
//
// A cell whose distance value d exceeds 1 is not tested; the ray advances
// ceil(d/|dir|) steps at once, each charged to the budget. Other cells are
// tested for occupancy and, when empty, advanced by one step. Traversal stops
// with no hit when it reaches a cell without a chunk.
func (m *Marcher) Cast(origin, dir mgl32.Vec3, maxSteps int) (Hit, bool) {
	return m.cast(origin, dir, maxSteps, true)
}

// CastDDA is Cast without distance skipping: every visited cell is tested.
func (m *Marcher) CastDDA(origin, dir mgl32.Vec3, maxSteps int) (Hit, bool) {
	return m.cast(origin, dir, maxSteps, false)
}

func (m *Marcher) cast(origin, dir mgl32.Vec3, maxSteps int, skip bool) (Hit, bool) {
	o, d, clipped, ok := m.prepare(origin, dir)
	if !ok {
		return Hit{}, false
	}
	tr := newTraversal(o, d)
	if clipped {
		tr.enter(o, d, m.box)
	}

	l := d.Len()
	if l == 0 {
		return m.probe(tr.cell, 0)
	}

	steps := 0
	for steps < maxSteps {
		x, y, z := tr.cell[0], tr.cell[1], tr.cell[2]
		if !m.grid.ChunkExistsAt(x, y, z) {
			return Hit{Cell: tr.cell, Steps: steps}, false
		}

		if skip {
			if dist := m.grid.DistanceAt(x, y, z); dist > 1 {
				n := int(math32.Ceil(float32(dist)/l - stepEpsilon))
				if n < 1 {
					n = 1
				}
				for i := 0; i < n && steps < maxSteps; i++ {
					tr.advance()
					steps++
				}
				continue
			}
		}

		if v, ok := m.grid.VoxelAt(x, y, z); ok && v.Occupied {
			return Hit{Voxel: v, Cell: tr.cell, Steps: steps}, true
		}
		tr.advance()
		steps++
	}
	return Hit{Cell: tr.cell, Steps: steps}, false
}

func (m *Marcher) probe(cell [3]int, steps int) (Hit, bool) {
	v, ok := m.grid.VoxelAt(cell[0], cell[1], cell[2])
	if !ok || !v.Occupied {
		return Hit{Cell: cell, Steps: steps}, false
	}
	return Hit{Voxel: v, Cell: cell, Steps: steps}, true
}

// prepare normalizes dir and moves an origin outside the world's bounding box
// onto the box. clipped reports that the origin was moved. ok is false when
// the ray can never reach a chunk.
func (m *Marcher) prepare(origin, dir mgl32.Vec3) (o, d mgl32.Vec3, clipped, ok bool) {
	if !finite(origin) || !finite(dir) || !m.hasBox {
		return origin, dir, false, false
	}
	l := dir.Len()
	if l == 0 {
		return origin, dir, false, true
	}
	d = dir.Mul(1 / l)

	if m.box.Contains(fastFloor(origin[0]), fastFloor(origin[1]), fastFloor(origin[2])) {
		return origin, d, false, true
	}
	t0, ok := m.clip(origin, d)
	if !ok {
		return origin, d, false, false
	}
	return origin.Add(d.Mul(t0 + entryEpsilon)), d, true, true
}

// clip intersects the ray with the bounding box and returns the entry
// parameter, which is never negative.
func (m *Marcher) clip(o, d mgl32.Vec3) (float32, bool) {
	t0, t1 := float32(0), math32.Inf(1)
	for a := 0; a < 3; a++ {
		lo, hi := float32(m.box.Min[a]), float32(m.box.Max[a])
		if d[a] == 0 {
			if o[a] < lo || o[a] >= hi {
				return 0, false
			}
			continue
		}
		inv := 1 / d[a]
		near, far := (lo-o[a])*inv, (hi-o[a])*inv
		if near > far {
			near, far = far, near
		}
		t0 = max(t0, near)
		t1 = min(t1, far)
		if t0 > t1 {
			return 0, false
		}
	}
	return t0, true
}

type traversal struct {
	cell   [3]int
	step   [3]int
	tMax   [3]float32
	tDelta [3]float32
}

func newTraversal(origin, dir mgl32.Vec3) traversal {
	var tr traversal
	for a := 0; a < 3; a++ {
		tr.cell[a] = fastFloor(origin[a])
		tr.step[a], tr.tMax[a], tr.tDelta[a] = ddaInit(origin[a], dir[a], tr.cell[a])
	}
	return tr
}

// enter moves a cell that float rounding left just outside box back onto the
// boundary layer and recomputes that axis from the entry point. For a grazing
// ray the entry nudge along the face normal is below float32 resolution.
func (tr *traversal) enter(origin, dir mgl32.Vec3, box world.Box) {
	for a := 0; a < 3; a++ {
		c := min(max(tr.cell[a], box.Min[a]), box.Max[a]-1)
		if c == tr.cell[a] {
			continue
		}
		tr.cell[a] = c
		tr.step[a], tr.tMax[a], tr.tDelta[a] = ddaInit(origin[a], dir[a], c)
		if tr.tMax[a] < 0 {
			tr.tMax[a] = 0
		}
	}
}

// advance steps one cell along the axis with the smallest tMax. Ties go to the
// lowest axis. An axis with a zero direction has an infinite tMax and is only
// picked when every axis is infinite.
func (tr *traversal) advance() {
	a := 2
	if tr.tMax[0] <= tr.tMax[1] && tr.tMax[0] <= tr.tMax[2] {
		a = 0
	} else if tr.tMax[1] <= tr.tMax[2] {
		a = 1
	}
	tr.cell[a] += tr.step[a]
	tr.tMax[a] += tr.tDelta[a]
}

func ddaInit(pos, dir float32, cell int) (step int, tMax, tDelta float32) {
	if dir > 0 {
		return 1, (float32(cell+1) - pos) / dir, 1 / dir
	}
	if dir < 0 {
		ndir := -dir
		return -1, (pos - float32(cell)) / ndir, 1 / ndir
	}
	return 0, math32.Inf(1), math32.Inf(1)
}

func fastFloor(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		return i - 1
	}
	return i
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

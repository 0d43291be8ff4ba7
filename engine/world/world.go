// Package world holds the sparse voxel world: chunks keyed by chunk coordinate,
// world-to-local coordinate translation, generation from a scalar field, and
// the per-chunk distance fields used to skip empty space while ray marching.
package world

import (
	"errors"
	"sort"
	"time"

	"github.com/alitto/pond/v2"

	"voxray/engine/noise"
	"voxray/internal/cpuinfo"
	"voxray/internal/logx"
)

var ErrChunkAbsent = errors.New("world: chunk absent")

// World maps chunk coordinates to chunks.
//
// A World is safe for concurrent reads once generation has finished. Insert
// and SetVoxelAt must not run concurrently with readers.
type World struct {
	chunks map[Coord]*Chunk

	min, max Coord
}

func New() *World {
	return &World{chunks: map[Coord]*Chunk{}}
}

// Insert stores c under its own coordinate, replacing any previous chunk there.
func (w *World) Insert(c *Chunk) {
	if c == nil {
		return
	}
	k := c.Coord()
	if len(w.chunks) == 0 {
		w.min, w.max = k, k
	} else {
		w.min = Coord{min(w.min.X, k.X), min(w.min.Y, k.Y), min(w.min.Z, k.Z)}
		w.max = Coord{max(w.max.X, k.X), max(w.max.Y, k.Y), max(w.max.Z, k.Z)}
	}
	w.chunks[k] = c
}

// Chunk returns the chunk at chunk coordinate c.
func (w *World) Chunk(c Coord) (*Chunk, bool) {
	ch, ok := w.chunks[c]
	return ch, ok
}

func (w *World) Len() int { return len(w.chunks) }

// Coords returns every chunk coordinate sorted by z, then y, then x.
func (w *World) Coords() []Coord {
	keys := make([]Coord, 0, len(w.chunks))
	for k := range w.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Z != keys[j].Z {
			return keys[i].Z < keys[j].Z
		}
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].X < keys[j].X
	})
	return keys
}

// Bounds returns the smallest voxel box covering every chunk. ok is false for
// a world without chunks. The box may contain holes where no chunk exists.
func (w *World) Bounds() (b Box, ok bool) {
	if len(w.chunks) == 0 {
		return Box{}, false
	}
	lx, ly, lz := w.min.Origin()
	hx, hy, hz := w.max.Origin()
	return Box{
		Min: [3]int{lx, ly, lz},
		Max: [3]int{hx + ChunkSize, hy + ChunkSize, hz + ChunkSize},
	}, true
}

// ChunkExistsAt reports whether a chunk contains world voxel (x,y,z).
func (w *World) ChunkExistsAt(x, y, z int) bool {
	c, _, _, _ := Split(x, y, z)
	_, ok := w.chunks[c]
	return ok
}

// VoxelAt returns the voxel at world (x,y,z). ok is false when no chunk
// contains the coordinate, which is distinct from an empty voxel.
func (w *World) VoxelAt(x, y, z int) (v Voxel, ok bool) {
	c, lx, ly, lz := Split(x, y, z)
	ch, ok := w.chunks[c]
	if !ok {
		return Voxel{}, false
	}
	return ch.voxels[lz*ChunkArea+ly*ChunkSize+lx], true
}

// DistanceAt returns the distance-field value at world (x,y,z), or
// NearDistance when no chunk contains the coordinate.
func (w *World) DistanceAt(x, y, z int) uint8 {
	c, lx, ly, lz := Split(x, y, z)
	ch, ok := w.chunks[c]
	if !ok {
		return NearDistance
	}
	return ch.distance[lz*ChunkArea+ly*ChunkSize+lx]
}

// SetVoxelAt writes v at world (x,y,z). Distance fields are not updated.
func (w *World) SetVoxelAt(x, y, z int, v Voxel) error {
	c, lx, ly, lz := Split(x, y, z)
	ch, ok := w.chunks[c]
	if !ok {
		return ErrChunkAbsent
	}
	return ch.PutVoxel(lx, ly, lz, v)
}

// GenOptions tunes World.Generate.
type GenOptions struct {
	// Scale is passed to Chunk.Generate. Zero selects DefaultScale.
	Scale float64
	// Workers bounds generation concurrency. Zero uses every CPU.
	Workers int
	Log     logx.Logger
}

// Generate builds one chunk per coordinate of r from src. Chunks
// are independent, so they are filled concurrently and inserted afterwards.
func (w *World) Generate(r Region, src noise.Source, opts GenOptions) {
	coords := r.Coords()
	if len(coords) == 0 {
		return
	}
	start := time.Now()

	out := make([]*Chunk, len(coords))
	pool := pond.NewPool(cpuinfo.Workers(opts.Workers))
	for i, c := range coords {
		i, c := i, c
		pool.Submit(func() {
			ch := NewChunk(c)
			ch.Generate(src, opts.Scale)
			out[i] = ch
		})
	}
	pool.StopAndWait()

	for _, ch := range out {
		w.Insert(ch)
	}
	logx.Printf(opts.Log, "generated %d chunks %v..%v in %.2fs",
		len(out), r.Min, r.Max, time.Since(start).Seconds())
}

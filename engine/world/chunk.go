package world

import (
	"errors"

	"voxray/engine/noise"
)

var ErrOutOfRange = errors.New("world: local coordinate out of range")

const (
	// Threshold is the sample value a cell must exceed to become occupied.
	Threshold = 0.5

	// DefaultScale is the number of world units per noise-space unit.
	DefaultScale = 16.0

	// NearDistance is the distance reported for cells outside a chunk.
	// It never certifies a cell as skippable.
	NearDistance uint8 = 0
)

// Chunk is a 16x16x16 block of voxels plus a co-indexed distance field.
//
// Both arrays use the linear index z*256 + y*16 + x.
type Chunk struct {
	coord    Coord
	voxels   [ChunkVolume]Voxel
	distance [ChunkVolume]uint8
}

// NewChunk returns an empty chunk at chunk coordinate c.
func NewChunk(c Coord) *Chunk {
	return &Chunk{coord: c}
}

func (c *Chunk) Coord() Coord { return c.coord }

// Index returns the linear offset of local (x,y,z), or false when any
// component is outside [0,16).
func Index(x, y, z int) (int, bool) {
	if uint(x) >= ChunkSize || uint(y) >= ChunkSize || uint(z) >= ChunkSize {
		return 0, false
	}
	return z*ChunkArea + y*ChunkSize + x, true
}

// Unindex is the inverse of Index.
func Unindex(i int) (x, y, z int) {
	return i & chunkMask, (i >> chunkShift) & chunkMask, i >> (2 * chunkShift)
}

// Voxel returns the voxel at local (x,y,z). ok is false out of range.
func (c *Chunk) Voxel(x, y, z int) (v Voxel, ok bool) {
	i, ok := Index(x, y, z)
	if !ok {
		return Voxel{}, false
	}
	return c.voxels[i], true
}

// SetVoxel writes v at local (x,y,z). Writes outside the chunk are ignored so
// per-voxel generation loops never branch; use PutVoxel to observe them.
func (c *Chunk) SetVoxel(x, y, z int, v Voxel) {
	if i, ok := Index(x, y, z); ok {
		c.voxels[i] = v
	}
}

// PutVoxel is SetVoxel with an ErrOutOfRange result for rejected writes.
func (c *Chunk) PutVoxel(x, y, z int, v Voxel) error {
	i, ok := Index(x, y, z)
	if !ok {
		return ErrOutOfRange
	}
	c.voxels[i] = v
	return nil
}

// Distance returns the distance-field value at local (x,y,z), or NearDistance
// out of range.
func (c *Chunk) Distance(x, y, z int) uint8 {
	i, ok := Index(x, y, z)
	if !ok {
		return NearDistance
	}
	return c.distance[i]
}

// SetDistance writes the distance-field value at local (x,y,z). Out-of-range
// writes are ignored.
func (c *Chunk) SetDistance(x, y, z int, d uint8) {
	if i, ok := Index(x, y, z); ok {
		c.distance[i] = d
	}
}

// Occupied counts the chunk's occupied voxels.
func (c *Chunk) Occupied() int {
	n := 0
	for i := range c.voxels {
		if c.voxels[i].Occupied {
			n++
		}
	}
	return n
}

// Generate fills the chunk from src. Each cell samples src at
// (origin+local)/scale and becomes occupied, with a gray color of the sample,
// when the sample exceeds Threshold. A non-positive scale selects DefaultScale.
func (c *Chunk) Generate(src noise.Source, scale float64) {
	if src == nil {
		return
	}
	if scale <= 0 {
		scale = DefaultScale
	}
	inv := 1 / scale
	ox, oy, oz := c.coord.Origin()
	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				n := src.Sample(
					float64(ox+x)*inv,
					float64(oy+y)*inv,
					float64(oz+z)*inv,
				)
				v := Empty
				if n > Threshold {
					v = Solid(Gray(n))
				}
				c.voxels[z*ChunkArea+y*ChunkSize+x] = v
			}
		}
	}
}

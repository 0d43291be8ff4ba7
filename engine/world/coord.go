package world

import "fmt"

const (
	ChunkSize   = 16
	ChunkArea   = ChunkSize * ChunkSize
	ChunkVolume = ChunkArea * ChunkSize

	// 16 = 2^4
	chunkShift = 4
	chunkMask  = ChunkSize - 1
)

// Coord addresses a chunk. Chunk c covers world voxels [c*16, c*16+16) on each axis.
type Coord struct {
	X, Y, Z int
}

func (c Coord) String() string { return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z) }

// Origin returns the world coordinate of the chunk's local (0,0,0) voxel.
func (c Coord) Origin() (x, y, z int) {
	return c.X * ChunkSize, c.Y * ChunkSize, c.Z * ChunkSize
}

// Split translates a world voxel coordinate into its chunk and local coordinates.
// Arithmetic shift and mask give floor division and Euclidean remainder for
// negative coordinates too.
func Split(x, y, z int) (c Coord, lx, ly, lz int) {
	c = Coord{X: x >> chunkShift, Y: y >> chunkShift, Z: z >> chunkShift}
	return c, x & chunkMask, y & chunkMask, z & chunkMask
}

// Join is the inverse of Split.
func Join(c Coord, lx, ly, lz int) (x, y, z int) {
	ox, oy, oz := c.Origin()
	return ox + lx, oy + ly, oz + lz
}

// Region is an inclusive cuboid of chunk coordinates.
type Region struct {
	Min, Max Coord
}

// Cube returns the region [-r, r] on every axis.
func Cube(r int) Region {
	return Region{Min: Coord{-r, -r, -r}, Max: Coord{r, r, r}}
}

// Empty reports whether the region contains no chunk.
func (r Region) Empty() bool {
	return r.Max.X < r.Min.X || r.Max.Y < r.Min.Y || r.Max.Z < r.Min.Z
}

// Len returns the number of chunks in the region.
func (r Region) Len() int {
	if r.Empty() {
		return 0
	}
	return (r.Max.X - r.Min.X + 1) * (r.Max.Y - r.Min.Y + 1) * (r.Max.Z - r.Min.Z + 1)
}

// Coords lists the region's chunk coordinates in x-fastest order.
func (r Region) Coords() []Coord {
	out := make([]Coord, 0, r.Len())
	for z := r.Min.Z; z <= r.Max.Z; z++ {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for x := r.Min.X; x <= r.Max.X; x++ {
				out = append(out, Coord{x, y, z})
			}
		}
	}
	return out
}

// Box is a half-open box of world voxel coordinates: Min <= p < Max on each axis.
type Box struct {
	Min, Max [3]int
}

// Contains reports whether the voxel p lies inside the box.
func (b Box) Contains(x, y, z int) bool {
	return x >= b.Min[0] && x < b.Max[0] &&
		y >= b.Min[1] && y < b.Max[1] &&
		z >= b.Min[2] && z < b.Max[2]
}

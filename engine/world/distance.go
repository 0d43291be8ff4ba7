package world

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"voxray/internal/cpuinfo"
	"voxray/internal/logx"
)

// MaxRadius is the largest distance-field search radius.
const MaxRadius = 255

var ErrRadius = errors.New("world: distance radius out of range")

// cachedRadius is the largest radius scanned through a padded copy of the
// chunk's neighborhood occupancy. Larger radii read through the world map.
var cachedRadius = 16

// FieldOptions tunes World.GenerateDistanceFields.
type FieldOptions struct {
	// Workers bounds concurrency. Zero uses every CPU.
	Workers int
	Log     logx.Logger
	// ProgressEvery logs after every n completed chunks. Zero means 64.
	ProgressEvery int
}

// FieldValue converts minSq, the smallest squared offset to an occupied voxel
// found within the search cube, into the stored distance
// floor(sqrt(max(minSq,1) - 1)).
//
// The result never exceeds min(radius, 255): a leap of d single-axis steps
// stays inside the scanned cube only while d <= radius.
func FieldValue(minSq, radius int) uint8 {
	if minSq < 1 {
		minSq = 1
	}
	d := isqrt(minSq - 1)
	limit := min(radius, MaxRadius)
	if d > limit {
		d = limit
	}
	if d < 0 {
		d = 0
	}
	return uint8(d)
}

// notFound is the initial minimum squared distance, kept when the cube holds
// no occupied voxel.
func notFound(radius int) int { return radius * radius * radius }

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// GenerateDistanceFields computes every chunk's distance field for the given
// search radius. Each chunk is one pool task that reads occupancy anywhere in
// the world and writes only its own field, so the occupancy seen by every task
// is the same fully generated snapshot. It returns once all fields are done.
func (w *World) GenerateDistanceFields(radius int, opts FieldOptions) error {
	if radius < 1 || radius > MaxRadius {
		return fmt.Errorf("%w: %d", ErrRadius, radius)
	}
	coords := w.Coords()
	total := len(coords)
	if total == 0 {
		return nil
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = 64
	}

	var offsets []offset
	if radius <= cachedRadius {
		offsets = scanOffsets(radius)
	}

	start := time.Now()
	var (
		mu   sync.Mutex
		done int
	)
	pool := pond.NewPool(cpuinfo.Workers(opts.Workers))
	for _, c := range coords {
		ch := w.chunks[c]
		pool.Submit(func() {
			if offsets != nil {
				w.fillFieldCached(ch, radius, offsets)
			} else {
				w.fillFieldDirect(ch, radius)
			}

			mu.Lock()
			done++
			n := done
			mu.Unlock()

			if n%every == 0 {
				logx.Printf(opts.Log, "distance field for chunk %v, %.2f%% | CPS: %.2f",
					ch.coord, float64(n)/float64(total)*100, rate(n, time.Since(start)))
			}
		})
	}
	pool.StopAndWait()

	elapsed := time.Since(start)
	logx.Printf(opts.Log, "distance fields generated: %d chunks, radius %d, %.2fs | CPS: %.2f",
		total, radius, elapsed.Seconds(), rate(total, elapsed))
	return nil
}

func rate(n int, d time.Duration) float64 {
	s := d.Seconds()
	if s <= 0 {
		return 0
	}
	return float64(n) / s
}

// offset is a neighbor in the search cube. delta is its linear offset in the
// padded occupancy grid.
type offset struct {
	sq    int
	delta int
}

// scanOffsets lists the non-zero offsets of {-r..r}^3 that can lower the
// not-found value, nearest first. The first occupied offset in this order is
// the cube's minimum.
func scanOffsets(radius int) []offset {
	side := ChunkSize + 2*radius
	limit := notFound(radius)
	var out []offset
	for dz := -radius; dz <= radius; dz++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				sq := dx*dx + dy*dy + dz*dz
				if sq >= limit {
					continue
				}
				out = append(out, offset{sq: sq, delta: (dz*side+dy)*side + dx})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].sq < out[j].sq })
	return out
}

// loadOccupancy copies the occupancy of the chunk at c padded by radius on
// every side. Cells in absent chunks are empty.
func (w *World) loadOccupancy(c Coord, radius int) []bool {
	side := ChunkSize + 2*radius
	cells := make([]bool, side*side*side)
	ox, oy, oz := c.Origin()

	var (
		cur  *Chunk
		curC Coord
		have bool
	)
	i := 0
	for z := 0; z < side; z++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				cc, lx, ly, lz := Split(ox-radius+x, oy-radius+y, oz-radius+z)
				if !have || cc != curC {
					cur = w.chunks[cc]
					curC, have = cc, true
				}
				if cur != nil {
					cells[i] = cur.voxels[lz*ChunkArea+ly*ChunkSize+lx].Occupied
				}
				i++
			}
		}
	}
	return cells
}

func (w *World) fillFieldCached(ch *Chunk, radius int, offsets []offset) {
	cells := w.loadOccupancy(ch.coord, radius)
	side := ChunkSize + 2*radius
	sentinel := notFound(radius)

	for i := range ch.voxels {
		if ch.voxels[i].Occupied {
			ch.distance[i] = 0
			continue
		}
		x, y, z := Unindex(i)
		base := ((z+radius)*side+(y+radius))*side + (x + radius)
		minSq := sentinel
		for _, o := range offsets {
			if cells[base+o.delta] {
				minSq = o.sq
				break
			}
		}
		ch.distance[i] = FieldValue(minSq, radius)
	}
}

func (w *World) fillFieldDirect(ch *Chunk, radius int) {
	ox, oy, oz := ch.coord.Origin()
	sentinel := notFound(radius)

	for i := range ch.voxels {
		if ch.voxels[i].Occupied {
			ch.distance[i] = 0
			continue
		}
		x, y, z := Unindex(i)
		wx, wy, wz := ox+x, oy+y, oz+z
		minSq := sentinel
		for dz := -radius; dz <= radius; dz++ {
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if dx == 0 && dy == 0 && dz == 0 {
						continue
					}
					sq := dx*dx + dy*dy + dz*dz
					if sq >= minSq {
						continue
					}
					if v, ok := w.VoxelAt(wx+dx, wy+dy, wz+dz); ok && v.Occupied {
						minSq = sq
					}
				}
			}
		}
		ch.distance[i] = FieldValue(minSq, radius)
	}
}

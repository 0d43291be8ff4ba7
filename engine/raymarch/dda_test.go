package raymarch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxray/engine/world"
)

// countingGrid counts occupancy tests.
type countingGrid struct {
	*world.World
	tests int
}

func (g *countingGrid) VoxelAt(x, y, z int) (world.Voxel, bool) {
	g.tests++
	return g.World.VoxelAt(x, y, z)
}

func singleVoxelWorld(t *testing.T, radius int) *world.World {
	t.Helper()
	w := world.New()
	ch := world.NewChunk(world.Coord{})
	ch.SetVoxel(8, 8, 8, world.Solid(world.White))
	w.Insert(ch)
	if err := w.GenerateDistanceFields(radius, world.FieldOptions{Workers: 1}); err != nil {
		t.Fatalf("GenerateDistanceFields: %v", err)
	}
	return w
}

func TestCastScenario(t *testing.T) {
	w := singleVoxelWorld(t, 2)
	g := &countingGrid{World: w}
	m := New(g)

	hit, ok := m.Cast(mgl32.Vec3{8, 8, -5}, mgl32.Vec3{0, 0, 1}, 32)
	if !ok {
		t.Fatalf("no hit: %+v", hit)
	}
	if hit.Cell != [3]int{8, 8, 8} || hit.Voxel.Color != world.White {
		t.Fatalf("hit=%+v", hit)
	}
	skipped := g.tests

	g.tests = 0
	ref, ok := m.CastDDA(mgl32.Vec3{8, 8, -5}, mgl32.Vec3{0, 0, 1}, 32)
	if !ok || ref.Cell != hit.Cell || ref.Steps != hit.Steps {
		t.Fatalf("dda=%+v cast=%+v", ref, hit)
	}
	if skipped >= g.tests {
		t.Fatalf("distance skip tested %d cells, plain DDA %d", skipped, g.tests)
	}
}

func TestCastReverseDirection(t *testing.T) {
	m := New(singleVoxelWorld(t, 4))
	hit, ok := m.Cast(mgl32.Vec3{8.5, 8.5, 40}, mgl32.Vec3{0, 0, -1}, 64)
	if !ok || hit.Cell != [3]int{8, 8, 8} {
		t.Fatalf("hit=%+v ok=%v", hit, ok)
	}
}

func TestCastEmptyWorldMisses(t *testing.T) {
	w := world.New()
	for _, c := range world.Cube(1).Coords() {
		w.Insert(world.NewChunk(c))
	}
	if err := w.GenerateDistanceFields(3, world.FieldOptions{}); err != nil {
		t.Fatalf("GenerateDistanceFields: %v", err)
	}
	m := New(w)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		o := mgl32.Vec3{rng.Float32()*40 - 20, rng.Float32()*40 - 20, rng.Float32()*40 - 20}
		d := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		hit, ok := m.Cast(o, d, 128)
		if ok {
			t.Fatalf("hit in empty world: %+v", hit)
		}
		if hit.Steps > 128 {
			t.Fatalf("steps=%d exceed budget", hit.Steps)
		}
	}
}

func TestCastNoChunks(t *testing.T) {
	m := New(world.New())
	if hit, ok := m.Cast(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 64); ok || hit.Steps != 0 {
		t.Fatalf("hit=%+v ok=%v", hit, ok)
	}
}

func TestCastDegenerateDirection(t *testing.T) {
	m := New(singleVoxelWorld(t, 2))

	if hit, ok := m.Cast(mgl32.Vec3{8.5, 8.5, 8.5}, mgl32.Vec3{}, 64); !ok || hit.Steps != 0 {
		t.Fatalf("zero direction inside voxel: %+v %v", hit, ok)
	}
	if _, ok := m.Cast(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{}, 64); ok {
		t.Fatalf("zero direction in empty cell hit")
	}

	// Single-axis rays never select the zero axes.
	for _, d := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-1, 0, 0}} {
		o := mgl32.Vec3{8.5, 8.5, 8.5}.Sub(d.Mul(6))
		hit, ok := m.Cast(o, d, 32)
		if !ok || hit.Cell != [3]int{8, 8, 8} {
			t.Fatalf("dir %v: hit=%+v ok=%v", d, hit, ok)
		}
	}

	nan := float32(0)
	nan = nan / nan
	if _, ok := m.Cast(mgl32.Vec3{nan, 0, 0}, mgl32.Vec3{1, 0, 0}, 64); ok {
		t.Fatalf("NaN origin hit")
	}
}

func TestCastBudget(t *testing.T) {
	m := New(singleVoxelWorld(t, 2))
	hit, ok := m.Cast(mgl32.Vec3{8.5, 8.5, 0.5}, mgl32.Vec3{0, 0, 1}, 3)
	if ok {
		t.Fatalf("hit beyond budget: %+v", hit)
	}
	if hit.Steps != 3 {
		t.Fatalf("steps=%d", hit.Steps)
	}
}

func TestCastMissesBox(t *testing.T) {
	m := New(singleVoxelWorld(t, 2))
	if hit, ok := m.Cast(mgl32.Vec3{-5, 8, 8}, mgl32.Vec3{-1, 0, 0}, 64); ok || hit.Steps != 0 {
		t.Fatalf("ray pointing away: %+v %v", hit, ok)
	}
}

// Isolated voxels: every occupied cell has an empty 26-neighborhood.
func isolatedWorld(rng *rand.Rand, radius int) *world.World {
	w := world.New()
	region := world.Region{Min: world.Coord{X: -1, Y: 0, Z: -1}, Max: world.Coord{X: 0, Y: 0, Z: 0}}
	for _, c := range region.Coords() {
		w.Insert(world.NewChunk(c))
	}
	occupied := func(x, y, z int) bool {
		for dz := -1; dz <= 1; dz++ {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if v, ok := w.VoxelAt(x+dx, y+dy, z+dz); ok && v.Occupied {
						return true
					}
				}
			}
		}
		return false
	}
	for i := 0; i < 120; i++ {
		x, y, z := rng.Intn(32)-16, rng.Intn(16), rng.Intn(32)-16
		if occupied(x, y, z) {
			continue
		}
		c := world.RGB(uint8(rng.Intn(256)), uint8(rng.Intn(256)), 1)
		_ = w.SetVoxelAt(x, y, z, world.Solid(c))
	}
	if err := w.GenerateDistanceFields(radius, world.FieldOptions{Workers: 2}); err != nil {
		panic(err)
	}
	return w
}

func TestCastNeverTunnels(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, radius := range []int{1, 2, 3, 5} {
		m := New(isolatedWorld(rng, radius))
		hits := 0
		for i := 0; i < 2000; i++ {
			o := mgl32.Vec3{rng.Float32()*48 - 24, rng.Float32()*24 - 4, rng.Float32()*48 - 24}
			d := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
			if d.Len() < 1e-3 {
				continue
			}
			ref, refOK := m.CastDDA(o, d, 256)
			got, gotOK := m.Cast(o, d, 256)
			if refOK != gotOK {
				t.Fatalf("radius %d ray %v %v: dda=%+v/%v cast=%+v/%v", radius, o, d, ref, refOK, got, gotOK)
			}
			if refOK {
				hits++
				if ref.Cell != got.Cell || ref.Steps != got.Steps {
					t.Fatalf("radius %d ray %v %v: dda=%+v cast=%+v", radius, o, d, ref, got)
				}
			}
		}
		if hits == 0 {
			t.Fatalf("radius %d: no ray hit anything", radius)
		}
	}
}

// slabWorld spans chunks x,z in [-1,0] and y in [0,1]. The upper chunk layer,
// voxels y 16..31, is solid; the lower one is empty. Bounds: x,z [-16,16),
// y [0,32).
func slabWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New()
	region := world.Region{Min: world.Coord{X: -1, Y: 0, Z: -1}, Max: world.Coord{X: 0, Y: 1, Z: 0}}
	for _, c := range region.Coords() {
		ch := world.NewChunk(c)
		if c.Y == 1 {
			for i := 0; i < world.ChunkVolume; i++ {
				x, y, z := world.Unindex(i)
				ch.SetVoxel(x, y, z, world.Solid(world.White))
			}
		}
		w.Insert(ch)
	}
	if err := w.GenerateDistanceFields(2, world.FieldOptions{Workers: 2}); err != nil {
		t.Fatalf("GenerateDistanceFields: %v", err)
	}
	return w
}

// sampleCast walks o+d*t for t in [t0,t1] in fixed small increments and
// returns the first occupied cell with its parameter.
func sampleCast(w *world.World, o, d mgl32.Vec3, t0, t1 float64) ([3]int, float64, bool) {
	const dt = 1e-3
	for i := 0; ; i++ {
		t := t0 + float64(i)*dt
		if t > t1 {
			return [3]int{}, 0, false
		}
		var c [3]int
		for a := 0; a < 3; a++ {
			c[a] = int(math.Floor(float64(o[a]) + float64(d[a])*t))
		}
		if v, ok := w.VoxelAt(c[0], c[1], c[2]); ok && v.Occupied {
			return c, t, true
		}
	}
}

// spanAt returns the parameter range in which o+d*t lies in [lo,hi].
func spanAt(o, d float32, lo, hi float64) (float64, float64) {
	if d == 0 {
		if float64(o) < lo || float64(o) > hi {
			return 1, 0
		}
		return math.Inf(-1), math.Inf(1)
	}
	a, b := (lo-float64(o))/float64(d), (hi-float64(o))/float64(d)
	return math.Min(a, b), math.Max(a, b)
}

// cellEntry returns the parameter at which o+d*t first touches cell, widened
// by tol on every side.
func cellEntry(o, d mgl32.Vec3, cell [3]int, tol float64) (float64, bool) {
	t0, t1 := 0.0, math.Inf(1)
	for a := 0; a < 3; a++ {
		lo, hi := float64(cell[a])-tol, float64(cell[a]+1)+tol
		oa, da := float64(o[a]), float64(d[a])
		if da == 0 {
			if oa < lo || oa > hi {
				return 0, false
			}
			continue
		}
		near, far := (lo-oa)/da, (hi-oa)/da
		if near > far {
			near, far = far, near
		}
		t0, t1 = math.Max(t0, near), math.Min(t1, far)
		if t0 > t1 {
			return 0, false
		}
	}
	return t0, true
}

func TestCastGrazingEntry(t *testing.T) {
	w := slabWorld(t)
	m := New(w)
	cases := []struct {
		name   string
		origin mgl32.Vec3
		dir    mgl32.Vec3
		cell   [3]int
		hit    bool
	}{
		{"top", mgl32.Vec3{0.5, 32.0105, -20.3}, mgl32.Vec3{0, -0.001, 1}, [3]int{0, 31, -10}, true},
		{"min-x", mgl32.Vec3{-16.0105, 20.5, -25.3}, mgl32.Vec3{0.001, 0, 1}, [3]int{-16, 20, -15}, true},
		{"max-x", mgl32.Vec3{16.0105, 24.5, 25.7}, mgl32.Vec3{-0.001, 0, -1}, [3]int{15, 24, 15}, true},
		{"bottom", mgl32.Vec3{0.5, -0.0105, -20.3}, mgl32.Vec3{0, 0.001, 1}, [3]int{}, false},
	}
	for _, tc := range cases {
		ref, _, refOK := sampleCast(w, tc.origin, tc.dir, 0, 100)
		if refOK != tc.hit || (refOK && ref != tc.cell) {
			t.Fatalf("%s: sampled=%v/%v want %v/%v", tc.name, ref, refOK, tc.cell, tc.hit)
		}
		for _, skip := range []bool{true, false} {
			var (
				hit Hit
				ok  bool
			)
			if skip {
				hit, ok = m.Cast(tc.origin, tc.dir, 256)
			} else {
				hit, ok = m.CastDDA(tc.origin, tc.dir, 256)
			}
			if ok != tc.hit {
				t.Fatalf("%s skip=%v: hit=%+v ok=%v", tc.name, skip, hit, ok)
			}
			if ok && hit.Cell != tc.cell {
				t.Fatalf("%s skip=%v: cell=%v want %v", tc.name, skip, hit.Cell, tc.cell)
			}
		}
	}
}

func TestCastClippedMatchesSampling(t *testing.T) {
	w := slabWorld(t)
	m := New(w)
	rng := rand.New(rand.NewSource(5))
	hits := 0
	for i := 0; i < 300; i++ {
		o := mgl32.Vec3{rng.Float32()*60 - 30, 32.01 + rng.Float32(), rng.Float32()*60 - 30}
		d := mgl32.Vec3{rng.Float32()*2 - 1, -(0.002 + rng.Float32()*0.2), rng.Float32()*2 - 1}
		if math.Abs(float64(d[0]))+math.Abs(float64(d[2])) < 0.1 {
			continue
		}
		// Sample only while the ray is over a margin around the box and has
		// not dropped below it.
		t0, t1 := 0.0, (float64(o[1])+0.5)/-float64(d[1])
		for _, a := range []int{0, 2} {
			lo, hi := spanAt(o[a], d[a], -17, 17)
			t0, t1 = math.Max(t0, lo), math.Min(t1, hi)
		}
		var (
			ref   [3]int
			refT  float64
			refOK bool
		)
		if t0 <= t1 {
			ref, refT, refOK = sampleCast(w, o, d, t0, t1)
		}

		got, ok := m.Cast(o, d.Normalize(), 512)
		if refOK && !ok {
			t.Fatalf("ray %v %v: sampled hit %v at t=%.3f, cast missed: %+v", o, d, ref, refT, got)
		}
		if !ok {
			continue
		}
		hits++
		if v, _ := w.VoxelAt(got.Cell[0], got.Cell[1], got.Cell[2]); !v.Occupied {
			t.Fatalf("ray %v %v: cast hit empty cell %v", o, d, got.Cell)
		}
		enter, on := cellEntry(o, d, got.Cell, 1e-3)
		if !on {
			t.Fatalf("ray %v %v: cast cell %v is off the ray", o, d, got.Cell)
		}
		if refOK && enter > refT+1e-2 {
			t.Fatalf("ray %v %v: cast cell %v entered at t=%.3f after sampled hit %v at t=%.3f",
				o, d, got.Cell, enter, ref, refT)
		}
	}
	if hits == 0 {
		t.Fatalf("no clipped ray hit the slab")
	}
}

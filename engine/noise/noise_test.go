package noise

import (
	"math"
	"testing"
)

func TestSimplexDeterministicAndBounded(t *testing.T) {
	a := NewSimplex(42)
	b := NewSimplex(42)
	if a.Seed() != 42 {
		t.Fatalf("Seed=%d", a.Seed())
	}
	for i := 0; i < 500; i++ {
		x, y, z := float64(i)*0.37, float64(i%17)*-1.3, float64(i%5)*2.1
		va, vb := a.Sample(x, y, z), b.Sample(x, y, z)
		if va != vb {
			t.Fatalf("sample %d differs: %v vs %v", i, va, vb)
		}
		if va < -1 || va > 1 {
			t.Fatalf("sample %d out of range: %v", i, va)
		}
	}
}

func TestFractalNormalized(t *testing.T) {
	f := Fractal{Base: Constant(1), Octaves: 4, Lacunarity: 2, Persistence: 0.5}
	if v := f.Sample(1, 2, 3); math.Abs(v-1) > 1e-12 {
		t.Fatalf("constant fractal=%v", v)
	}
	g := Fractal{Base: NewSimplex(1), Octaves: 5, Lacunarity: 2, Persistence: 0.5}
	for i := 0; i < 200; i++ {
		v := g.Sample(float64(i)*0.11, 0.5, -float64(i)*0.07)
		if v < -1 || v > 1 {
			t.Fatalf("fractal out of range: %v", v)
		}
	}
}

func TestFractalSingleOctave(t *testing.T) {
	base := Func(func(x, _, _ float64) float64 { return x })
	f := Fractal{Base: base, Octaves: 1}
	if v := f.Sample(0.25, 0, 0); v != 0.25 {
		t.Fatalf("single octave=%v", v)
	}
	if v := f.Sample(3, 0, 0); v != 1 {
		t.Fatalf("clamp=%v", v)
	}
	if v := (Fractal{}).Sample(1, 1, 1); v != 0 {
		t.Fatalf("nil base=%v", v)
	}
}

func TestClampNaN(t *testing.T) {
	if v := Func(func(_, _, _ float64) float64 { return math.NaN() }); clamp(v.Sample(0, 0, 0)) != 0 {
		t.Fatalf("NaN not mapped to 0")
	}
}

// Package noise provides deterministic scalar fields sampled during world generation.
//
// Every Source returns values in [-1, 1] for any input.
package noise

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Source is a scalar field over 3D space.
type Source interface {
	Sample(x, y, z float64) float64
}

// Func adapts a plain function to a Source.
type Func func(x, y, z float64) float64

func (f Func) Sample(x, y, z float64) float64 { return f(x, y, z) }

// Constant is a field with the same value everywhere.
type Constant float64

func (c Constant) Sample(_, _, _ float64) float64 { return float64(c) }

// Simplex is seeded 3D OpenSimplex noise.
type Simplex struct {
	seed  int64
	noise opensimplex.Noise
}

func NewSimplex(seed int64) *Simplex {
	return &Simplex{seed: seed, noise: opensimplex.New(seed)}
}

func (s *Simplex) Seed() int64 { return s.seed }

func (s *Simplex) Sample(x, y, z float64) float64 {
	return clamp(s.noise.Eval3(x, y, z))
}

// Fractal sums octaves of a base field. Each octave multiplies the frequency by
// Lacunarity and the amplitude by Persistence; the sum is divided by the total
// amplitude so the result stays in [-1, 1].
type Fractal struct {
	Base        Source
	Octaves     int
	Lacunarity  float64
	Persistence float64
}

func (f Fractal) Sample(x, y, z float64) float64 {
	if f.Base == nil {
		return 0
	}
	octaves := f.Octaves
	if octaves <= 1 {
		return clamp(f.Base.Sample(x, y, z))
	}

	var sum, norm float64
	freq, amp := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += f.Base.Sample(x*freq, y*freq, z*freq) * amp
		norm += amp
		freq *= f.Lacunarity
		amp *= f.Persistence
	}
	if norm == 0 {
		return 0
	}
	return clamp(sum / norm)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

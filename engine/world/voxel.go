package world

import "math"

// Color is an 8-bit RGB surface color.
type Color struct {
	R, G, B uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

var (
	Black = Color{}
	White = Color{R: 0xFF, G: 0xFF, B: 0xFF}
)

// Gray maps v in [0,1] to a gray color. Values outside the range are clamped.
func Gray(v float64) Color {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c := uint8(v * 255)
	return Color{R: c, G: c, B: c}
}

// Voxel is one grid cell. Empty voxels always carry the zero color.
type Voxel struct {
	Color    Color
	Occupied bool
}

// Empty is the unoccupied voxel.
var Empty = Voxel{}

// Solid returns an occupied voxel of color c.
func Solid(c Color) Voxel { return Voxel{Color: c, Occupied: true} }

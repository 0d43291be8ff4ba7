// Package render turns the voxel world into RGBA frames, one ray per pixel,
// with scanlines spread over a fixed set of workers.
package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"voxray/engine/camera"
	"voxray/engine/raymarch"
	"voxray/engine/world"
)

var (
	ErrBufferSize = errors.New("render: buffer size mismatch")
	ErrOptions    = errors.New("render: invalid options")
)

// BytesPerPixel is the RGBA8888 stride.
const BytesPerPixel = 4

type Options struct {
	Width, Height int
	// Workers is the number of scanline groups. Values below 1 mean 1.
	Workers int
	// FOV is the vertical field of view in radians.
	FOV      float32
	MaxSteps int
	Rotation camera.Rotation
	// SkipEmpty enables distance-field skipping. Off, every cell is tested.
	SkipEmpty  bool
	Background world.Color
}

func DefaultOptions() Options {
	return Options{
		Width:     640,
		Height:    480,
		Workers:   8,
		FOV:       mgl32.DegToRad(60),
		MaxSteps:  256,
		Rotation:  camera.RotateFull,
		SkipEmpty: true,
	}
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrOptions, o.Width, o.Height)
	case o.FOV <= 0 || o.FOV >= math32.Pi:
		return fmt.Errorf("%w: fov %v", ErrOptions, o.FOV)
	case o.MaxSteps < 0:
		return fmt.Errorf("%w: max steps %d", ErrOptions, o.MaxSteps)
	}
	return nil
}

// Stats summarizes one frame.
type Stats struct {
	Hits    int
	Misses  int
	Steps   int
	Elapsed time.Duration
}

func (s Stats) Pixels() int { return s.Hits + s.Misses }

// StepsPerPixel is the mean number of traversal steps per ray.
func (s Stats) StepsPerPixel() float64 {
	if n := s.Pixels(); n > 0 {
		return float64(s.Steps) / float64(n)
	}
	return 0
}

type Renderer struct {
	opts    Options
	marcher *raymarch.Marcher

	// Camera-space scale of NDC x and y.
	sx, sy float32
}

// New builds a renderer for g. g must not change while the renderer is in use.
func New(g raymarch.Grid, opts Options) (*Renderer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Workers > opts.Height {
		opts.Workers = opts.Height
	}
	half := math32.Tan(opts.FOV / 2)
	aspect := float32(opts.Width) / float32(opts.Height)
	return &Renderer{
		opts:    opts,
		marcher: raymarch.New(g),
		sx:      aspect * half,
		sy:      half,
	}, nil
}

func (r *Renderer) Options() Options { return r.opts }

// SetSkipEmpty switches between Cast and CastDDA. It must not be called while
// Render is running.
func (r *Renderer) SetSkipEmpty(on bool) { r.opts.SkipEmpty = on }

// RayDirection returns the normalized world direction through the center of
// pixel (x, y).
func (r *Renderer) RayDirection(x, y int, m mgl32.Mat3) mgl32.Vec3 {
	ndcX := (float32(x)+0.5)/float32(r.opts.Width)*2 - 1
	ndcY := -((float32(y)+0.5)/float32(r.opts.Height)*2 - 1)
	d := mgl32.Vec3{ndcX * r.sx, ndcY * r.sy, 1}
	return m.Mul3x1(d).Normalize()
}

// Render draws one frame of view into buf, which must hold Width*Height RGBA
// pixels. It returns after every worker has finished.
func (r *Renderer) Render(buf []byte, view camera.View) (Stats, error) {
	w, h := r.opts.Width, r.opts.Height
	if len(buf) != w*h*BytesPerPixel {
		return Stats{}, fmt.Errorf("%w: have %d bytes, want %d", ErrBufferSize, len(buf), w*h*BytesPerPixel)
	}
	start := time.Now()
	m := r.opts.Rotation.Matrix(view.Orientation)

	parts := Partition(buf, w, h, r.opts.Workers)
	stats := make([]Stats, len(parts))

	var g errgroup.Group
	for i, rows := range parts {
		i, rows := i, rows
		g.Go(func() error {
			stats[i] = r.renderRows(rows, i, len(parts), view.Position, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var total Stats
	for _, s := range stats {
		total.Hits += s.Hits
		total.Misses += s.Misses
		total.Steps += s.Steps
	}
	total.Elapsed = time.Since(start)
	return total, nil
}

// renderRows fills rows[k], which is image row first+k*stride.
func (r *Renderer) renderRows(rows [][]byte, first, stride int, origin mgl32.Vec3, m mgl32.Mat3) Stats {
	var s Stats
	bg := r.opts.Background
	for k, row := range rows {
		y := first + k*stride
		for x := 0; x < r.opts.Width; x++ {
			dir := r.RayDirection(x, y, m)
			var (
				hit raymarch.Hit
				ok  bool
			)
			if r.opts.SkipEmpty {
				hit, ok = r.marcher.Cast(origin, dir, r.opts.MaxSteps)
			} else {
				hit, ok = r.marcher.CastDDA(origin, dir, r.opts.MaxSteps)
			}
			s.Steps += hit.Steps

			c := bg
			if ok {
				c = hit.Voxel.Color
				s.Hits++
			} else {
				s.Misses++
			}
			p := row[x*BytesPerPixel : x*BytesPerPixel+BytesPerPixel : x*BytesPerPixel+BytesPerPixel]
			p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xFF
		}
	}
	return s
}

// Partition splits an RGBA buffer into per-worker scanline sets: worker i owns
// rows i, i+n, i+2n and so on. Each row slice is capped at its own length so
// no worker can reach pixels outside its rows.
func Partition(buf []byte, w, h, n int) [][][]byte {
	if n < 1 {
		n = 1
	}
	if n > h {
		n = h
	}
	stride := w * BytesPerPixel
	parts := make([][][]byte, n)
	for y := 0; y < h; y++ {
		lo := y * stride
		parts[y%n] = append(parts[y%n], buf[lo:lo+stride:lo+stride])
	}
	return parts
}

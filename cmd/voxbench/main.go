package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxray/config"
	"voxray/engine/camera"
	"voxray/engine/noise"
	"voxray/engine/render"
	"voxray/engine/world"
	"voxray/internal/trace"
)

func main() {
	var (
		mode    = flag.String("mode", "bench", "bench|trace.")
		cfgPath = flag.String("config", "", "YAML config file (bench mode).")
		seed    = flag.Int64("seed", 1, "World seed (bench mode).")
		frames  = flag.Int("frames", 10, "Frames per variant (bench mode).")
		inPath  = flag.String("in", "", "Trace file to summarize (trace mode).")
	)
	flag.Parse()

	switch strings.ToLower(*mode) {
	case "bench":
		if err := bench(*cfgPath, *seed, *frames); err != nil {
			fatalf("bench: %v", err)
		}
	case "trace":
		if *inPath == "" {
			fatalf("usage: voxbench -mode trace -in frames-*.jsonl.zst")
		}
		if err := summarize(*inPath); err != nil {
			fatalf("trace: %v", err)
		}
	default:
		fatalf("unknown mode: %s", *mode)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

// bench renders the same view with and without distance skipping.
func bench(cfgPath string, seed int64, frames int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if frames < 1 {
		return fmt.Errorf("frames out of range: %d", frames)
	}

	src := noise.Fractal{
		Base:        noise.NewSimplex(seed),
		Octaves:     cfg.World.Octaves,
		Lacunarity:  cfg.World.Lacunarity,
		Persistence: cfg.World.Persistence,
	}
	w := world.New()
	start := time.Now()
	w.Generate(world.Cube(cfg.World.ChunkRadius), src, world.GenOptions{Scale: cfg.World.NoiseScale, Workers: cfg.World.Workers})
	genTime := time.Since(start)

	start = time.Now()
	if err := w.GenerateDistanceFields(cfg.World.DistanceRadius, world.FieldOptions{Workers: cfg.World.Workers}); err != nil {
		return err
	}
	fieldTime := time.Since(start)
	fmt.Printf("world: %d chunks, generate %v, distance fields (r=%d) %v\n",
		w.Len(), genTime.Round(time.Millisecond), cfg.World.DistanceRadius, fieldTime.Round(time.Millisecond))

	rot, err := camera.ParseRotation(cfg.Render.Rotation)
	if err != nil {
		return err
	}
	c := cfg.Camera
	view := camera.View{
		Position:    mgl32.Vec3{c.Position.X, c.Position.Y, c.Position.Z},
		Orientation: mgl32.Vec3{c.Orientation.X, c.Orientation.Y, c.Orientation.Z},
	}
	buf := make([]byte, cfg.Render.Width*cfg.Render.Height*render.BytesPerPixel)

	fmt.Printf("%-6s %10s %10s %12s\n", "mode", "ms/frame", "hits", "steps/px")
	for _, skip := range []bool{true, false} {
		r, err := render.New(w, render.Options{
			Width:     cfg.Render.Width,
			Height:    cfg.Render.Height,
			Workers:   cfg.Render.Workers,
			FOV:       mgl32.DegToRad(float32(cfg.Render.FOVDegrees)),
			MaxSteps:  cfg.Render.MaxSteps,
			Rotation:  rot,
			SkipEmpty: skip,
		})
		if err != nil {
			return err
		}
		var total time.Duration
		var last render.Stats
		for i := 0; i < frames; i++ {
			st, err := r.Render(buf, view)
			if err != nil {
				return err
			}
			total += st.Elapsed
			last = st
		}
		name := "dda"
		if skip {
			name = "skip"
		}
		fmt.Printf("%-6s %10.2f %10d %12.2f\n", name,
			float64(total.Microseconds())/1000/float64(frames), last.Hits, last.StepsPerPixel())
	}
	return nil
}

// summarize prints frame-time percentiles from a trace file.
func summarize(path string) error {
	frames, err := trace.ReadFrames(path)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("%s: no frames", path)
	}
	ms := make([]float64, len(frames))
	var steps, pixels int
	for i, f := range frames {
		ms[i] = f.ElapsedMs
		steps += f.Steps
		pixels += f.Hits + f.Misses
	}
	sort.Float64s(ms)
	pct := func(p float64) float64 { return ms[int(p*float64(len(ms)-1))] }
	fmt.Printf("frames %d  p50 %.2fms  p90 %.2fms  p99 %.2fms  max %.2fms\n",
		len(frames), pct(0.5), pct(0.9), pct(0.99), ms[len(ms)-1])
	if pixels > 0 {
		fmt.Printf("steps/px %.2f\n", float64(steps)/float64(pixels))
	}
	return nil
}

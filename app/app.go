// Package app drives the voxel renderer from a hal.HAL.
package app

import (
	"fmt"
	"math/rand"
	"runtime/debug"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxray/config"
	"voxray/engine/camera"
	"voxray/engine/hud"
	"voxray/engine/noise"
	"voxray/engine/render"
	"voxray/engine/world"
	"voxray/hal"
	"voxray/internal/buildinfo"
	"voxray/internal/logx"
	"voxray/internal/trace"
)

// Options are run-time choices that are not part of the config file.
type Options struct {
	// TraceDir enables the per-frame trace when set.
	TraceDir string
	// Source replaces the seeded noise built from the config.
	Source noise.Source
}

// System owns everything needed to produce frames.
type System struct {
	h   hal.HAL
	fb  hal.Framebuffer
	log logx.Logger
	cfg config.Config

	world *world.World
	cam   *camera.Camera
	rend  *render.Renderer
	hud   *hud.Overlay
	trace *trace.Writer

	showHUD bool
	frame   uint64
	last    time.Time
	fps     float64
}

// New generates the world and its distance fields, then prepares a renderer
// sized to the HAL's framebuffer.
func New(h hal.HAL, cfg config.Config, opts Options) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	disp := h.Display()
	if disp == nil || disp.Framebuffer() == nil {
		return nil, fmt.Errorf("app: %w: no framebuffer", hal.ErrNotImplemented)
	}
	fb := disp.Framebuffer()
	if fb.Format() != hal.PixelFormatRGBA8888 {
		return nil, fmt.Errorf("app: unsupported pixel format %d", fb.Format())
	}

	var log logx.Logger = logx.Discard
	if l := h.Logger(); l != nil {
		log = l
	}
	logx.Printf(log, "%s", buildinfo.String())

	src := opts.Source
	if src == nil {
		seed := cfg.World.Seed
		if seed == 0 {
			seed = int64(rand.Uint64())
		}
		cfg.World.Seed = seed
		logx.Printf(log, "seed: %d", seed)
		src = noise.Fractal{
			Base:        noise.NewSimplex(seed),
			Octaves:     cfg.World.Octaves,
			Lacunarity:  cfg.World.Lacunarity,
			Persistence: cfg.World.Persistence,
		}
	}

	w := world.New()
	wlog := logx.Prefix(log, "[world] ")
	w.Generate(world.Cube(cfg.World.ChunkRadius), src, world.GenOptions{
		Scale:   cfg.World.NoiseScale,
		Workers: cfg.World.Workers,
		Log:     wlog,
	})
	if err := w.GenerateDistanceFields(cfg.World.DistanceRadius, world.FieldOptions{
		Workers: cfg.World.Workers,
		Log:     wlog,
	}); err != nil {
		return nil, err
	}

	rot, err := camera.ParseRotation(cfg.Render.Rotation)
	if err != nil {
		return nil, err
	}
	bg, err := cfg.Render.BackgroundColor()
	if err != nil {
		return nil, err
	}
	rend, err := render.New(w, render.Options{
		Width:      fb.Width(),
		Height:     fb.Height(),
		Workers:    cfg.Render.Workers,
		FOV:        mgl32.DegToRad(float32(cfg.Render.FOVDegrees)),
		MaxSteps:   cfg.Render.MaxSteps,
		Rotation:   rot,
		SkipEmpty:  cfg.Render.SkipEmpty,
		Background: bg,
	})
	if err != nil {
		return nil, err
	}

	c := cfg.Camera
	cam := camera.New(
		mgl32.Vec3{c.Position.X, c.Position.Y, c.Position.Z},
		mgl32.Vec3{c.Orientation.X, c.Orientation.Y, c.Orientation.Z},
		rot, c.MoveSpeed, c.RotateSpeed,
	)

	s := &System{
		h:       h,
		fb:      fb,
		log:     log,
		cfg:     cfg,
		world:   w,
		cam:     cam,
		rend:    rend,
		hud:     hud.New(),
		showHUD: cfg.Render.HUD,
	}
	if opts.TraceDir != "" {
		tw, err := trace.Create(opts.TraceDir, "frames")
		if err != nil {
			return nil, fmt.Errorf("app: trace: %w", err)
		}
		s.trace = tw
		logx.Printf(log, "trace: %s", tw.Path())
	}
	return s, nil
}

func (s *System) World() *world.World    { return s.world }
func (s *System) Camera() *camera.Camera { return s.cam }
func (s *System) Frames() uint64         { return s.frame }
func (s *System) Seed() int64            { return s.cfg.World.Seed }

// Step applies pending input to the camera, then renders and presents one
// frame. It returns hal.ErrExit when the user asks to quit.
func (s *System) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.reportPanic(r, debug.Stack())
			err = fmt.Errorf("app: panic in frame %d: %v", s.frame, r)
		}
	}()

	if s.drainInput() {
		return hal.ErrExit
	}

	view := s.cam.View()
	buf := s.fb.Buffer()
	st, err := s.rend.Render(buf, view)
	if err != nil {
		return err
	}
	s.frame++
	s.tickFPS(time.Now())

	if s.showHUD {
		s.hud.Draw(buf, s.fb.Width(), s.fb.Height(), hud.Status(s.fps, st, view))
	}
	if s.trace != nil {
		err := s.trace.Write(trace.Frame{
			Frame:     s.frame,
			ElapsedMs: float64(st.Elapsed.Microseconds()) / 1000,
			Hits:      st.Hits,
			Misses:    st.Misses,
			Steps:     st.Steps,
			Position:  view.Position,
			Rotation:  view.Orientation,
		})
		if err != nil {
			logx.Printf(s.log, "trace: %v", err)
		}
	}
	return s.fb.Present()
}

// tickFPS keeps an exponentially smoothed frame rate.
func (s *System) tickFPS(now time.Time) {
	if !s.last.IsZero() {
		if dt := now.Sub(s.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if s.fps == 0 {
				s.fps = inst
			} else {
				s.fps = 0.9*s.fps + 0.1*inst
			}
		}
	}
	s.last = now
}

// Close flushes the trace.
func (s *System) Close() error {
	if s.trace == nil {
		return nil
	}
	err := s.trace.Close()
	s.trace = nil
	return err
}

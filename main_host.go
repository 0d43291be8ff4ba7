package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"voxray/app"
	"voxray/config"
	"voxray/hal"
	"voxray/internal/buildinfo"
)

func main() {
	var (
		hcfg     hal.HeadlessConfig
		cfgPath  string
		seed     int64
		traceDir string
		shot     string
	)
	flag.StringVar(&cfgPath, "config", "", "YAML config file (defaults when empty).")
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 0, "Frame rate cap in headless mode (0 = uncapped).")
	flag.Uint64Var(&hcfg.Frames, "frames", 0, "Stop after N frames in headless mode (0 = run until interrupted).")
	flag.Int64Var(&seed, "seed", 0, "World seed, overrides the config (0 = keep config).")
	flag.StringVar(&traceDir, "trace", "", "Write a compressed per-frame trace into this directory.")
	flag.StringVar(&shot, "shot", "", "Headless only: save the last frame as PNG.")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if seed != 0 {
		cfg.World.Seed = seed
	}
	if hcfg.Enabled {
		// The overlay only helps someone watching a window.
		cfg.Render.HUD = false
	}

	var sys *app.System
	newApp := func(h hal.HAL) (func() error, error) {
		s, err := app.New(h, cfg, app.Options{TraceDir: traceDir})
		if err != nil {
			return nil, err
		}
		sys = s
		return s.Step, nil
	}

	if hcfg.Enabled {
		hcfg.Width, hcfg.Height = cfg.Render.Width, cfg.Render.Height
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, newApp, hcfg)
		if err == nil && shot != "" && sys != nil {
			err = sys.WritePNG(shot)
		}
		exit(sys, err)
		return
	}

	err = hal.RunWindow(newApp, hal.WindowConfig{
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		Title:  cfg.Window.Title + " (" + buildinfo.Short() + ")",
		Scale:  cfg.Window.Scale,
	})
	exit(sys, err)
}

func exit(sys *app.System, err error) {
	if sys != nil {
		if cerr := sys.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

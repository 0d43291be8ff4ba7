package hal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Width   int
	Height  int
	// Hz paces steps. Zero or less runs them back to back.
	Hz int
	// Frames stops the run after N steps. Zero runs until ctx ends.
	Frames uint64
}

// RunHeadless builds the app on a host HAL and steps it without opening a
// window. A step returning ErrExit ends the run without error.
func RunHeadless(ctx context.Context, newApp func(HAL) (func() error, error), cfg HeadlessConfig) error {
	return runHeadless(ctx, New(cfg.Width, cfg.Height), newApp, cfg)
}

func runHeadless(ctx context.Context, h HAL, newApp func(HAL) (func() error, error), cfg HeadlessConfig) error {
	step, err := newApp(h)
	if err != nil {
		return err
	}
	if step == nil {
		return fmt.Errorf("hal: app has no step function")
	}

	var tick <-chan time.Time
	if cfg.Hz > 0 {
		d := time.Second / time.Duration(cfg.Hz)
		if d <= 0 {
			return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
		}
		t := time.NewTicker(d)
		defer t.Stop()
		tick = t.C
	}

	var frames uint64
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := step(); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return err
		}
		frames++
		if cfg.Frames > 0 && frames >= cfg.Frames {
			return nil
		}
	}
}

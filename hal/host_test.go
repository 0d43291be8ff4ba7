package hal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestFramebufferPresentPublishes(t *testing.T) {
	fb := newHostFramebuffer(3, 2)
	if fb.Format() != PixelFormatRGBA8888 || fb.StrideBytes() != 12 || len(fb.Buffer()) != 24 {
		t.Fatalf("geometry stride=%d len=%d", fb.StrideBytes(), len(fb.Buffer()))
	}
	fb.ClearRGB(10, 20, 30)

	got := make([]byte, 24)
	if n := fb.snapshot(got); n != 0 || !bytes.Equal(got, make([]byte, 24)) {
		t.Fatalf("front changed before Present: n=%d %v", n, got)
	}
	if err := fb.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	fb.ClearRGB(0, 0, 0)
	if n := fb.snapshot(got); n != 1 {
		t.Fatalf("presented=%d", n)
	}
	for i := 0; i < len(got); i += 4 {
		if got[i] != 10 || got[i+1] != 20 || got[i+2] != 30 || got[i+3] != 0xFF {
			t.Fatalf("pixel %d=%v", i/4, got[i:i+4])
		}
	}
}

func TestLoggerLines(t *testing.T) {
	var out bytes.Buffer
	h := newHost(1, 1, &out)
	h.Logger().WriteLineString("a")
	h.Logger().WriteLineBytes([]byte("b"))
	if out.String() != "a\nb\n" {
		t.Fatalf("out=%q", out.String())
	}
}

func TestRunHeadlessFrames(t *testing.T) {
	var out bytes.Buffer
	h := newHost(4, 4, &out)
	steps := 0
	err := runHeadless(context.Background(), h, func(HAL) (func() error, error) {
		return func() error { steps++; return nil }, nil
	}, HeadlessConfig{Frames: 5})
	if err != nil || steps != 5 {
		t.Fatalf("err=%v steps=%d", err, steps)
	}
}

func TestRunHeadlessExit(t *testing.T) {
	h := newHost(1, 1, &bytes.Buffer{})
	steps := 0
	err := runHeadless(context.Background(), h, func(HAL) (func() error, error) {
		return func() error {
			steps++
			if steps == 3 {
				return ErrExit
			}
			return nil
		}, nil
	}, HeadlessConfig{Hz: 1000})
	if err != nil || steps != 3 {
		t.Fatalf("err=%v steps=%d", err, steps)
	}
}

func TestRunHeadlessErrors(t *testing.T) {
	h := newHost(1, 1, &bytes.Buffer{})
	boom := errors.New("boom")
	if err := runHeadless(context.Background(), h, func(HAL) (func() error, error) {
		return nil, boom
	}, HeadlessConfig{}); !errors.Is(err, boom) {
		t.Fatalf("newApp err=%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := runHeadless(ctx, h, func(HAL) (func() error, error) {
		return func() error { return nil }, nil
	}, HeadlessConfig{Hz: 100})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ctx err=%v", err)
	}
}

func TestKeyboardDropsWhenFull(t *testing.T) {
	k := newHostKeyboard()
	for i := 0; i < 100; i++ {
		k.send(KeyEvent{Rune: 'w', Press: true})
	}
	if n := len(k.Events()); n != 64 {
		t.Fatalf("queued=%d", n)
	}
}

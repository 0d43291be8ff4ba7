package trace

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestWriteRead(t *testing.T) {
	w, err := Create(t.TempDir(), "frames")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasSuffix(w.Path(), ".jsonl.zst") {
		t.Fatalf("path=%s", w.Path())
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = w.Write(Frame{Frame: uint64(base*25 + j), Hits: 1, Position: [3]float32{1, 2, 3}})
			}
		}(i)
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Write(Frame{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("write after close err=%v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	frames, err := ReadFrames(w.Path())
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 100 {
		t.Fatalf("frames=%d", len(frames))
	}
	seen := map[uint64]bool{}
	for _, f := range frames {
		if f.Hits != 1 || f.Position != [3]float32{1, 2, 3} {
			t.Fatalf("frame=%+v", f)
		}
		seen[f.Frame] = true
	}
	if len(seen) != 100 {
		t.Fatalf("distinct frames=%d", len(seen))
	}
}

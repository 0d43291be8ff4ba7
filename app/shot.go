package app

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// WritePNG saves the current back buffer as a PNG.
func (s *System) WritePNG(path string) error {
	w, h := s.fb.Width(), s.fb.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, s.fb.Buffer())

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("app: encode %s: %w", path, err)
	}
	return f.Close()
}

// Package hud draws status text over rendered RGBA frames.
package hud

import (
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"voxray/engine/camera"
	"voxray/engine/render"
)

var (
	colorFG     = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorShadow = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
)

type Overlay struct {
	font       tinyfont.Fonter
	lineHeight int16
	margin     int16
}

func New() *Overlay {
	return &Overlay{font: &proggy.TinySZ8pt7b, lineHeight: 10, margin: 2}
}

// Draw writes lines from the top-left corner of an RGBA8888 frame of w*h
// pixels. Text outside the frame is clipped.
func (o *Overlay) Draw(buf []byte, w, h int, lines []string) {
	d := &rgbaDisplay{buf: buf, w: w, h: h}
	y := o.margin
	for _, s := range lines {
		if int(y) >= h {
			return
		}
		tinyfont.WriteLine(d, o.font, o.margin+1, y+o.lineHeight+1, s, colorShadow)
		tinyfont.WriteLine(d, o.font, o.margin, y+o.lineHeight, s, colorFG)
		y += o.lineHeight
	}
}

// Columns returns how many glyph cells fit across width pixels.
func (o *Overlay) Columns(width int) int {
	_, outbox := tinyfont.LineWidth(o.font, "0")
	if outbox == 0 {
		return 0
	}
	return (width - 2*int(o.margin)) / int(outbox)
}

// Rows returns how many text lines fit in height pixels.
func (o *Overlay) Rows(height int) int {
	return (height - 2*int(o.margin)) / int(o.lineHeight)
}

// Status formats the per-frame statistics block.
func Status(fps float64, st render.Stats, v camera.View) []string {
	return []string{
		fmt.Sprintf("fps %.1f  frame %.1fms", fps, float64(st.Elapsed.Microseconds())/1000),
		fmt.Sprintf("hits %d  steps/px %.1f", st.Hits, st.StepsPerPixel()),
		fmt.Sprintf("pos %.1f %.1f %.1f", v.Position[0], v.Position[1], v.Position[2]),
		fmt.Sprintf("rot %.2f %.2f %.2f", v.Orientation[0], v.Orientation[1], v.Orientation[2]),
	}
}

// rgbaDisplay adapts an RGBA8888 buffer to drivers.Displayer.
type rgbaDisplay struct {
	buf  []byte
	w, h int
}

func (d *rgbaDisplay) Size() (x, y int16) { return int16(d.w), int16(d.h) }

func (d *rgbaDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.w || iy < 0 || iy >= d.h {
		return
	}
	off := (iy*d.w + ix) * render.BytesPerPixel
	if off < 0 || off+3 >= len(d.buf) {
		return
	}
	d.buf[off] = c.R
	d.buf[off+1] = c.G
	d.buf[off+2] = c.B
	d.buf[off+3] = 0xFF
}

func (d *rgbaDisplay) Display() error { return nil }

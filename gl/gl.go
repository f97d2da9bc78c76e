// Package gl draws solid shapes, images and text on the clock panels.
package gl

import (
	"io"

	"lcdclock/core"
	"lcdclock/display"
)

// Target is the panel surface the helpers draw on. *display.Driver implements it.
type Target interface {
	Size() (width, height uint16)
	SetPixels(p display.Panel, r display.Region, pixels []byte) error
	StreamPixels(p display.Panel, r display.Region, src io.Reader) error
}

// Fill paints panel p with one color
func Fill(t Target, p display.Panel, c core.RGB565) error {
	w, h := t.Size()
	return DrawRect(t, p, 0, 0, w, h, c)
}

// ClearAll paints every panel with c
func ClearAll(t Target, c core.RGB565) error {
	for _, p := range display.Panels {
		if err := Fill(t, p, c); err != nil {
			return err
		}
	}
	return nil
}

// DrawRect paints the w x h rectangle at (x, y). An empty rectangle draws nothing.
func DrawRect(t Target, p display.Panel, x, y, w, h uint16, c core.RGB565) error {
	if w == 0 || h == 0 {
		return nil
	}
	r := display.Rect(x, y, w, h)
	return t.StreamPixels(p, r, Solid(c, r.Pixels()))
}

// DrawBoundingRect frames panel p with a border thickness pixels wide
func DrawBoundingRect(t Target, p display.Panel, thickness uint16, c core.RGB565) error {
	w, h := t.Size()
	if thickness == 0 {
		return nil
	}
	if 2*thickness >= w || 2*thickness >= h {
		return Fill(t, p, c)
	}
	inner := h - 2*thickness
	strips := [4][4]uint16{
		{0, 0, w, thickness},                         // top
		{0, thickness, thickness, inner},             // left
		{w - thickness, thickness, thickness, inner}, // right
		{0, h - thickness, w, thickness},             // bottom
	}
	for _, s := range strips {
		if err := DrawRect(t, p, s[0], s[1], s[2], s[3], c); err != nil {
			return err
		}
	}
	return nil
}

// solid yields n copies of a big-endian RGB565 pixel
type solid struct {
	px        [2]byte
	remaining int // bytes
}

// Solid returns a reader producing n pixels of color c
func Solid(c core.RGB565, n int) io.Reader {
	return &solid{px: c.BE(), remaining: 2 * n}
}

func (s *solid) Read(b []byte) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	n := len(b)
	if n > s.remaining {
		n = s.remaining
	}
	// the total length is even, so the parity of remaining is the offset within a pixel
	odd := s.remaining % 2
	for i := 0; i < n; i++ {
		b[i] = s.px[(i+odd)%2]
	}
	s.remaining -= n
	return n, nil
}

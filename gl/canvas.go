package gl

import (
	"image/color"

	"lcdclock/core"
	"lcdclock/display"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pixel"
	"tinygo.org/x/tinyfont"
)

// Canvas is an off-screen RGB565 buffer that tinyfont and other
// drivers.Displayer users can draw into before it is sent in one write.
type Canvas struct {
	img pixel.Image[pixel.RGB565BE]
}

var _ drivers.Displayer = (*Canvas)(nil)

// NewCanvas allocates a w x h canvas, initially black
func NewCanvas(w, h uint16) *Canvas {
	return &Canvas{img: pixel.NewImage[pixel.RGB565BE](int(w), int(h))}
}

func (c *Canvas) Size() (x, y int16) {
	w, h := c.img.Size()
	return int16(w), int16(h)
}

// SetPixel ignores coordinates outside the canvas
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	w, h := c.img.Size()
	if x < 0 || y < 0 || int(x) >= w || int(y) >= h {
		return
	}
	c.img.Set(int(x), int(y), pixel.NewRGB565BE(col.R, col.G, col.B))
}

// Display is a no-op; use Blit to send the canvas to a panel
func (c *Canvas) Display() error {
	return nil
}

// Fill paints the whole canvas
func (c *Canvas) Fill(col core.RGB8) {
	c.img.FillSolidColor(col.Pixel())
}

// Bytes returns the canvas as big-endian RGB565, row by row
func (c *Canvas) Bytes() []byte {
	return c.img.RawBuffer()
}

// Blit writes the canvas to panel p with its top-left corner at (x, y)
func (c *Canvas) Blit(t Target, p display.Panel, x, y uint16) error {
	w, h := c.img.Size()
	return t.SetPixels(p, display.Rect(x, y, uint16(w), uint16(h)), c.Bytes())
}

// TextSize returns the box DrawText fills for s
func TextSize(font tinyfont.Fonter, s string) (w, h uint16) {
	_, outbox := tinyfont.LineWidth(font, s)
	return uint16(outbox), uint16(font.GetYAdvance())
}

// DrawText renders one line of text on a bg box with its top-left corner at (x, y)
func DrawText(t Target, p display.Panel, x, y uint16, font tinyfont.Fonter, s string, fg, bg core.RGB8) error {
	w, h := TextSize(font, s)
	if w == 0 || h == 0 {
		return nil
	}
	c := NewCanvas(w, h)
	c.Fill(bg)
	// tinyfont positions glyphs on their baseline
	tinyfont.WriteLine(c, font, 0, int16(baseline(h)), s, fg.RGBA())
	return c.Blit(t, p, x, y)
}

// WriteCentered clears the canvas to bg and renders s centred across it
func (c *Canvas) WriteCentered(font tinyfont.Fonter, s string, fg, bg core.RGB8) {
	c.Fill(bg)
	w, h := c.Size()
	_, outbox := tinyfont.LineWidth(font, s)
	x := (int(w) - int(outbox)) / 2
	tinyfont.WriteLine(c, font, int16(x), int16(baseline(uint16(h))), s, fg.RGBA())
}

// baseline estimates the ascent of a line of height h
func baseline(h uint16) uint16 {
	return h * 3 / 4
}

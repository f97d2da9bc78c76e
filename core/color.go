package core

import (
	"image/color"

	"tinygo.org/x/drivers/pixel"
)

// RGB8 is a color with 8 bits per channel
type RGB8 struct {
	R, G, B uint8
}

// Color presets
var (
	Black  = RGB8{0x00, 0x00, 0x00}
	White  = RGB8{0xff, 0xff, 0xff}
	Red    = RGB8{0xff, 0x00, 0x00}
	Green  = RGB8{0x00, 0xff, 0x00}
	Blue   = RGB8{0x00, 0x00, 0xff}
	Cyan   = RGB8{0x00, 0xff, 0xff}
	Yellow = RGB8{0xff, 0xff, 0x00}
	Pink   = RGB8{0xff, 0x00, 0xff}
)

// Presets maps preset names to colors, for lookups from the control link and the host tool
var Presets = map[string]RGB8{
	"black":  Black,
	"white":  White,
	"red":    Red,
	"green":  Green,
	"blue":   Blue,
	"cyan":   Cyan,
	"yellow": Yellow,
	"pink":   Pink,
}

// RGB565 truncates the low bits of each channel (3/2/3) into a 5-6-5 value
func (c RGB8) RGB565() RGB565 {
	return RGB565(uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3))
}

// Pixel converts to the byte-swapped RGB565 layout used by pixel.Image buffers
func (c RGB8) Pixel() pixel.RGB565BE {
	return pixel.NewRGB565BE(c.R, c.G, c.B)
}

// RGBA returns the opaque color.RGBA equivalent
func (c RGB8) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Scale multiplies every channel by level/255
func (c RGB8) Scale(level uint8) RGB8 {
	return RGB8{
		R: uint8(uint16(c.R) * uint16(level) / 0xff),
		G: uint8(uint16(c.G) * uint16(level) / 0xff),
		B: uint8(uint16(c.B) * uint16(level) / 0xff),
	}
}

// RGB565 is a 16-bit color, 5 bits red, 6 bits green, 5 bits blue.
// Panels expect it big-endian on the wire.
type RGB565 uint16

// BE returns the big-endian wire bytes
func (c RGB565) BE() [2]byte {
	return [2]byte{byte(c >> 8), byte(c)}
}

// HSV converts hue (degrees, wrapped into 0..359), saturation and value (0..255 each) to RGB8.
// Integer arithmetic only.
func HSV(hue uint16, sat, val uint8) RGB8 {
	hue %= 360
	chroma := uint32(val) * uint32(sat) / 0xff

	// x = chroma * (1 - |(hue/60) mod 2 - 1|), kept in 1/60 steps
	rem := uint32(hue) % 120
	var dist uint32
	if rem >= 60 {
		dist = rem - 60
	} else {
		dist = 60 - rem
	}
	x := chroma * (60 - dist) / 60
	m := uint32(val) - chroma

	var r, g, b uint32
	switch {
	case hue < 60:
		r, g, b = chroma, x, 0
	case hue < 120:
		r, g, b = x, chroma, 0
	case hue < 180:
		r, g, b = 0, chroma, x
	case hue < 240:
		r, g, b = 0, x, chroma
	case hue < 300:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return RGB8{R: uint8(r + m), G: uint8(g + m), B: uint8(b + m)}
}

package gl

import (
	"encoding/binary"
	"errors"

	"lcdclock/core"
	"lcdclock/display"
)

// ErrInvalidImage means an image buffer is shorter than its header says
var ErrInvalidImage = errors.New("invalid image")

const imageHeader = 8

// Image is a pre-rendered RGB565 bitmap.
// The asset format is width and height as little-endian uint32, then
// width*height big-endian RGB565 pixels, row by row.
type Image struct {
	Width  uint16
	Height uint16
	Pixels []byte
}

// ParseImage decodes an asset. Pixels aliases data.
func ParseImage(data []byte) (Image, error) {
	if len(data) < imageHeader {
		return Image{}, ErrInvalidImage
	}
	w := binary.LittleEndian.Uint32(data[0:4])
	h := binary.LittleEndian.Uint32(data[4:8])
	if w > 0xFFFF || h > 0xFFFF {
		return Image{}, ErrInvalidImage
	}
	n := 2 * int(w) * int(h)
	if len(data)-imageHeader < n {
		return Image{}, ErrInvalidImage
	}
	return Image{Width: uint16(w), Height: uint16(h), Pixels: data[imageHeader : imageHeader+n]}, nil
}

// Encode returns img in the asset format
func (img Image) Encode() []byte {
	out := make([]byte, imageHeader+len(img.Pixels))
	binary.LittleEndian.PutUint32(out[0:4], uint32(img.Width))
	binary.LittleEndian.PutUint32(out[4:8], uint32(img.Height))
	copy(out[imageHeader:], img.Pixels)
	return out
}

// DrawImage blits img with its top-left corner at (x, y)
func DrawImage(t Target, p display.Panel, x, y uint16, img Image) error {
	if img.Width == 0 || img.Height == 0 {
		return nil
	}
	if len(img.Pixels) < 2*int(img.Width)*int(img.Height) {
		return core.Wrap(core.ErrOutOfBounds, ErrInvalidImage)
	}
	return t.SetPixels(p, display.Rect(x, y, img.Width, img.Height), img.Pixels)
}

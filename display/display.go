// Package display drives six ST7789 panels that share one SPI bus.
//
// The panels sit behind a 3-to-8 decoder: three select lines (CSA1..CSA3)
// carry the code of the active panel, and driving all three high selects
// none. Every public drawing call brackets its bus traffic with select and
// deselect, so no call returns with a panel still selected.
package display

import (
	"errors"
	"io"
	"time"

	"lcdclock/core"

	"tinygo.org/x/drivers"
)

// Visible panel size and the offset of the visible window inside the controller's canvas
const (
	Width  = 135
	Height = 240

	ColumnOffset = 52
	RowOffset    = 40
)

// streamChunk is the buffer size used by StreamPixels
const streamChunk = 256

// Pins are the control lines of the panel bus
type Pins struct {
	CSA1 core.OutputPin
	CSA2 core.OutputPin
	CSA3 core.OutputPin
	DC   core.OutputPin // low: command, high: data
	RST  core.OutputPin
}

// Config holds the driver settings
type Config struct {
	Width      uint16
	Height     uint16
	Brightness uint16        // initial backlight duty, 0..core.PWMMax
	ResetDelay time.Duration // settle time around the reset pulse
}

func (c *Config) applyDefaults() {
	if c.Width == 0 {
		c.Width = Width
	}
	if c.Height == 0 {
		c.Height = Height
	}
	if c.ResetDelay == 0 {
		c.ResetDelay = 10 * time.Microsecond
	}
}

// Region is a rectangle in panel-local coordinates. X1 and Y1 are inclusive.
type Region struct {
	X0, Y0, X1, Y1 uint16
}

// Rect returns the region of a w x h rectangle at (x, y)
func Rect(x, y, w, h uint16) Region {
	return Region{X0: x, Y0: y, X1: x + w - 1, Y1: y + h - 1}
}

// Width returns the number of columns in the region
func (r Region) Width() int {
	return int(r.X1) - int(r.X0) + 1
}

// Height returns the number of rows in the region
func (r Region) Height() int {
	return int(r.Y1) - int(r.Y0) + 1
}

// Pixels returns the number of pixels in the region
func (r Region) Pixels() int {
	return r.Width() * r.Height()
}

// Driver drives the six multiplexed panels and their shared backlight
type Driver struct {
	bus       drivers.SPI
	pins      Pins
	backlight core.PWMChannel
	cfg       Config

	brightness uint16
	cmd        [1]byte
	buf        [streamChunk]byte
}

// New creates a driver. Nothing is sent until Configure.
func New(bus drivers.SPI, pins Pins, backlight core.PWMChannel, cfg Config) *Driver {
	cfg.applyDefaults()
	return &Driver{
		bus:        bus,
		pins:       pins,
		backlight:  backlight,
		cfg:        cfg,
		brightness: cfg.Brightness,
	}
}

// Size returns the visible size of one panel
func (d *Driver) Size() (width, height uint16) {
	return d.cfg.Width, d.cfg.Height
}

// FullRegion covers a whole panel
func (d *Driver) FullRegion() Region {
	return Region{X1: d.cfg.Width - 1, Y1: d.cfg.Height - 1}
}

// Configure resets the panel bus, sets the backlight and runs the init sequence on every panel
func (d *Driver) Configure() error {
	d.deselect()
	d.hardReset()

	if err := d.SetBrightness(d.brightness); err != nil {
		return err
	}

	for _, p := range Panels {
		if err := d.InitPanel(p); err != nil {
			core.DebugError("init "+p.String(), err)
			return err
		}
	}
	return nil
}

// InitPanel runs the init sequence on a single panel.
// Use it to recover a panel left in an unknown state by a failed write.
func (d *Driver) InitPanel(p Panel) error {
	return d.withSelect(p, func() error {
		for _, step := range initSequence {
			if err := d.command(step.cmd, step.data...); err != nil {
				return err
			}
		}
		return nil
	})
}

// Brightness returns the last backlight duty set
func (d *Driver) Brightness() uint16 {
	return d.brightness
}

// SetBrightness sets the backlight PWM duty (0..65535)
func (d *Driver) SetBrightness(level uint16) error {
	d.brightness = level
	if d.backlight == nil {
		return nil
	}
	return d.backlight.SetDuty(level)
}

// SetPixels writes RGB565 big-endian pixel data into a region of panel p.
// pixels must hold exactly two bytes for every pixel of r.
func (d *Driver) SetPixels(p Panel, r Region, pixels []byte) error {
	if err := d.check(p, r); err != nil {
		return err
	}
	if want := 2 * r.Pixels(); len(pixels) != want {
		return core.Wrap(core.ErrOutOfBounds, errors.New("pixels "+core.Itoa(len(pixels))+
			" bytes, region needs "+core.Itoa(want)))
	}
	return d.withSelect(p, func() error {
		if err := d.setRegion(r); err != nil {
			return err
		}
		if err := d.command(RAMWR); err != nil {
			return err
		}
		return d.data(pixels)
	})
}

// StreamPixels writes pixel bytes read from src into a region of panel p.
// The bytes go out in chunks of at most 256, so src may be generated on the fly.
func (d *Driver) StreamPixels(p Panel, r Region, src io.Reader) error {
	if err := d.check(p, r); err != nil {
		return err
	}
	return d.withSelect(p, func() error {
		if err := d.setRegion(r); err != nil {
			return err
		}
		if err := d.command(RAMWR); err != nil {
			return err
		}
		for {
			n, err := io.ReadFull(src, d.buf[:])
			if n > 0 {
				if werr := d.data(d.buf[:n]); werr != nil {
					return werr
				}
			}
			switch {
			case err == nil:
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				return nil
			default:
				return err
			}
		}
	})
}

func (d *Driver) check(p Panel, r Region) error {
	if !p.Valid() {
		return core.Wrap(core.ErrOutOfBounds, errors.New("panel "+core.Itoa(int(p))))
	}
	if r.X0 > r.X1 || r.Y0 > r.Y1 || r.X1 >= d.cfg.Width || r.Y1 >= d.cfg.Height {
		return core.Wrap(core.ErrOutOfBounds, errors.New("region "+
			core.Utoa(uint32(r.X0))+","+core.Utoa(uint32(r.Y0))+"-"+
			core.Utoa(uint32(r.X1))+","+core.Utoa(uint32(r.Y1))))
	}
	return nil
}

// setRegion programs the column and row window, shifted into the controller's canvas
func (d *Driver) setRegion(r Region) error {
	x0, x1 := r.X0+ColumnOffset, r.X1+ColumnOffset
	y0, y1 := r.Y0+RowOffset, r.Y1+RowOffset

	if err := d.command(CASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	return d.command(RASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
}

// command sends an opcode with DC low, then its parameters with DC high
func (d *Driver) command(cmd byte, params ...byte) error {
	d.pins.DC.Set(false)
	d.cmd[0] = cmd
	if err := d.write(d.cmd[:]); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return d.data(params)
}

func (d *Driver) data(b []byte) error {
	d.pins.DC.Set(true)
	return d.write(b)
}

func (d *Driver) write(b []byte) error {
	if err := d.bus.Tx(b, nil); err != nil {
		return core.Wrap(core.ErrBusWrite, err)
	}
	return nil
}

func (d *Driver) withSelect(p Panel, fn func() error) error {
	d.selectPanel(p)
	defer d.deselect()
	return fn()
}

func (d *Driver) selectPanel(p Panel) {
	d.setSelectLines(p.SelectCode())
}

func (d *Driver) deselect() {
	d.setSelectLines(deselectCode)
}

func (d *Driver) setSelectLines(code uint8) {
	d.pins.CSA1.Set(code&0b001 != 0)
	d.pins.CSA2.Set(code&0b010 != 0)
	d.pins.CSA3.Set(code&0b100 != 0)
}

func (d *Driver) hardReset() {
	d.pins.RST.Set(true)
	time.Sleep(d.cfg.ResetDelay)
	d.pins.RST.Set(false)
	time.Sleep(d.cfg.ResetDelay)
	d.pins.RST.Set(true)
	time.Sleep(d.cfg.ResetDelay)
}

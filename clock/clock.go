// Package clock ties the panels, the I2C sensors, the LED strip and the
// buttons into the clock application.
//
// Clock owns every peripheral. Callers reach the sensors only through its
// methods, which check the devices out of the bus arbiter for the duration
// of one operation.
package clock

import (
	"errors"
	"time"

	"lcdclock/buttons"
	"lcdclock/core"
	"lcdclock/display"
	"lcdclock/gl"
	"lcdclock/i2cbus"
	"lcdclock/ledstrip"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
)

// Panels is the display surface the clock draws on. *display.Driver satisfies it.
type Panels interface {
	gl.Target
	Configure() error
	SetBrightness(level uint16) error
}

// Hardware is every peripheral of the board
type Hardware struct {
	Bus     *i2cbus.Arbiter
	Display Panels
	Strip   *ledstrip.Strip

	ModeButton  *buttons.Button
	LeftButton  *buttons.Button
	RightButton *buttons.Button
}

// Colors used for the glyphs
var (
	Foreground = core.RGB8{R: 0xff, G: 0x90, B: 0x20} // nixie orange
	Background = core.Black
)

// blank marks a panel whose content is unknown
const blank = "\x00"

// Clock is the application
type Clock struct {
	hw    Hardware
	state *State
	face  tinyfont.Fonter
	cell  *gl.Canvas

	applied uint8 // brightness step on the backlight
	shown   [display.NumPanels]string
	drawn   time.Time // second last rendered on a clock screen
}

// New wraps the hardware. Nothing is touched until Init.
func New(hw Hardware) *Clock {
	c := &Clock{
		hw:    hw,
		state: NewState(ledstrip.NewAnimator(), DefaultBrightness),
		face:  &freesans.Bold24pt7b,
	}
	w, _ := hw.Display.Size()
	c.cell = gl.NewCanvas(w, uint16(c.face.GetYAdvance()))
	c.forget()
	return c
}

// State returns the UI state machine
func (c *Clock) State() *State {
	return c.state
}

// Init installs the sensors on the arbiter, starts them, configures the
// panels and clears them. A sensor failure does not stop the panels from
// coming up; every failure is returned.
func (c *Clock) Init() error {
	c.hw.Bus.AddRTC(i2cbus.RTCAddress)
	c.hw.Bus.AddEnvSensor(i2cbus.EnvAddress)

	var errs []error
	if err := c.hw.Bus.WithRTC((*i2cbus.RTC).Init); err != nil {
		core.DebugError("rtc init", err)
		errs = append(errs, err)
	}
	if err := c.hw.Bus.WithEnvSensor((*i2cbus.EnvSensor).Init); err != nil {
		core.DebugError("env init", err)
		errs = append(errs, err)
	}

	if err := c.hw.Display.Configure(); err != nil {
		return errors.Join(append(errs, err)...)
	}
	if err := c.applyBrightness(); err != nil {
		errs = append(errs, err)
	}
	if err := gl.ClearAll(c.hw.Display, Background.RGB565()); err != nil {
		errs = append(errs, err)
	}
	c.forget()
	c.state.Invalidate()
	return errors.Join(errs...)
}

// Draw shows an image on panel p
func (c *Clock) Draw(p display.Panel, x, y uint16, img gl.Image) error {
	c.dirty(p)
	return gl.DrawImage(c.hw.Display, p, x, y, img)
}

// Fill paints panel p one color
func (c *Clock) Fill(p display.Panel, color core.RGB565) error {
	c.dirty(p)
	return gl.Fill(c.hw.Display, p, color)
}

// SetBrightness sets the backlight duty directly, bypassing the brightness steps
func (c *Clock) SetBrightness(level uint16) error {
	return c.hw.Display.SetBrightness(level)
}

// StripColor shows a fixed color on the strip until the strip mode changes
func (c *Clock) StripColor(color core.RGB8) {
	c.state.SetStripColor(color)
	c.hw.Strip.SetColor(color)
}

// SetStripMode selects the strip animation
func (c *Clock) SetStripMode(m ledstrip.Mode) {
	c.state.SetStripMode(m)
}

// ReadTime reads the RTC
func (c *Clock) ReadTime() (t time.Time, err error) {
	err = c.hw.Bus.WithRTC(func(r *i2cbus.RTC) error {
		t, err = r.ReadTime()
		return err
	})
	return t, err
}

// SetTime writes t to the RTC
func (c *Clock) SetTime(t time.Time) error {
	err := c.hw.Bus.WithRTC(func(r *i2cbus.RTC) error {
		return r.SetTime(t)
	})
	if err == nil {
		c.state.Invalidate()
	}
	return err
}

// ReadEnvironment reads the environmental sensor
func (c *Clock) ReadEnvironment() (m i2cbus.Measurement, err error) {
	err = c.hw.Bus.WithEnvSensor(func(s *i2cbus.EnvSensor) error {
		m, err = s.Read()
		return err
	})
	return m, err
}

// ShowTime renders HH MM SS, one digit per panel
func (c *Clock) ShowTime(t time.Time) error {
	return c.show(timeGlyphs(t))
}

// ShowDate renders DD MM YY, one digit per panel
func (c *Clock) ShowDate(t time.Time) error {
	return c.show(dateGlyphs(t))
}

// Frame runs one pass of the main loop: it polls the buttons, applies any
// brightness change, redraws the current screen when needed and pushes the
// next strip color. now is the time to show, normally read from the RTC.
func (c *Clock) Frame(now time.Time) error {
	c.state.HandleButtons(poll(c.hw.ModeButton), poll(c.hw.LeftButton), poll(c.hw.RightButton))

	var err error
	if c.state.Brightness() != c.applied {
		err = c.applyBrightness()
	}

	if c.state.EatTransition() || c.ticking(now) {
		if rerr := c.Render(now); err == nil {
			err = rerr
		}
	}

	c.hw.Strip.SetColor(c.state.Update())
	return err
}

func (c *Clock) applyBrightness() error {
	if err := c.hw.Display.SetBrightness(c.state.Duty()); err != nil {
		return err
	}
	c.applied = c.state.Brightness()
	return nil
}

// ticking reports whether a clock screen is showing and the second changed
func (c *Clock) ticking(now time.Time) bool {
	m := c.state.Mode()
	switch m.Screen {
	case ScreenRegular, ScreenSetTime:
	default:
		return false
	}
	return now.Truncate(time.Second) != c.drawn
}

// Render draws the current screen
func (c *Clock) Render(now time.Time) error {
	m := c.state.Mode()
	switch m.Screen {
	case ScreenRegular, ScreenSetTime:
		c.drawn = now.Truncate(time.Second)
		if m.View == ViewDate {
			return c.ShowDate(now)
		}
		return c.ShowTime(now)
	case ScreenMenu:
		return c.show(m.Option.String())
	case ScreenSetAlarm:
		// no alarm is stored yet
		return c.show("------")
	case ScreenSetRgb:
		return c.show("RGB  " + core.Itoa(int(c.state.Strip().Mode)))
	case ScreenSetBrightness:
		return c.show("BRT  " + core.Itoa(int(c.state.Brightness())))
	case ScreenTempHumidity:
		env, err := c.ReadEnvironment()
		if err != nil {
			c.show("ERR")
			return err
		}
		return c.show(envGlyphs(env))
	}
	return nil
}

// show draws one character of s per panel, left aligned and padded with
// spaces. Panels already showing their character are skipped.
func (c *Clock) show(s string) error {
	_, h := c.hw.Display.Size()
	y := (h - uint16(c.face.GetYAdvance())) / 2

	for i, p := range display.Panels {
		g := " "
		if i < len(s) {
			g = s[i : i+1]
		}
		if c.shown[i] == g {
			continue
		}
		c.cell.WriteCentered(c.face, g, Foreground, Background)
		if err := c.cell.Blit(c.hw.Display, p, 0, y); err != nil {
			c.shown[i] = blank
			return err
		}
		c.shown[i] = g
	}
	return nil
}

// dirty marks a panel as painted by something other than show
func (c *Clock) dirty(p display.Panel) {
	if p.Valid() {
		c.shown[p] = blank
	}
}

func (c *Clock) forget() {
	for i := range c.shown {
		c.shown[i] = blank
	}
}

func poll(b *buttons.Button) buttons.Event {
	if b == nil {
		return buttons.None
	}
	return b.Update()
}

func timeGlyphs(t time.Time) string {
	return core.Pad2(t.Hour()) + core.Pad2(t.Minute()) + core.Pad2(t.Second())
}

func dateGlyphs(t time.Time) string {
	return core.Pad2(t.Day()) + core.Pad2(int(t.Month())) + core.Pad2(t.Year()%100)
}

// envGlyphs shows whole degrees and relative humidity: "21C45%"
func envGlyphs(m i2cbus.Measurement) string {
	return field(core.Itoa(int(m.Temperature/1000))+"C", 3) + field(core.Itoa(int(m.Humidity/100))+"%", 3)
}

// field right-aligns s in n characters, keeping the last n when s is longer
func field(s string, n int) string {
	for len(s) < n {
		s = " " + s
	}
	return s[len(s)-n:]
}

package clock

import (
	"errors"
	"testing"
	"time"

	"lcdclock/buttons"
	"lcdclock/core"
	"lcdclock/display"
	"lcdclock/display/displaytest"
	"lcdclock/i2cbus"
	"lcdclock/ledstrip"

	"tinygo.org/x/drivers/tester"
)

// fifo accepts every word and keeps the last one
type fifo struct {
	last  uint32
	words int
}

func (f *fifo) IsTxFIFOFull() bool { return false }
func (f *fifo) TxPut(w uint32)     { f.last = w; f.words++ }

// button is an active-high input
type button struct{ down bool }

func (b *button) Get() bool { return b.down }

type fixture struct {
	clock *Clock
	rec   *displaytest.Recorder
	pwm   *displaytest.PWM
	rtc   *tester.I2CDevice8
	env   *tester.I2CDevice8
	fifo  *fifo

	mode, left, right *button
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := tester.NewI2CBus(t)
	f := &fixture{
		rec:   displaytest.NewRecorder(),
		pwm:   &displaytest.PWM{},
		rtc:   bus.NewDevice(i2cbus.RTCAddress),
		env:   bus.NewDevice(i2cbus.EnvAddress),
		fifo:  &fifo{},
		mode:  &button{},
		left:  &button{},
		right: &button{},
	}
	f.env.Registers[0xD0] = 0x60

	f.clock = New(Hardware{
		Bus:         i2cbus.New(bus),
		Display:     display.New(f.rec, f.rec.Pins(), f.pwm, display.Config{ResetDelay: 1}),
		Strip:       ledstrip.NewStrip(f.fifo, 6),
		ModeButton:  buttons.New(buttons.NewDebounce(f.mode, 1)),
		LeftButton:  buttons.New(buttons.NewDebounce(f.left, 1)),
		RightButton: buttons.New(buttons.NewDebounce(f.right, 1)),
	})
	return f
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	if err := f.clock.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	f.rec.Reset()
}

// ramWrites returns the panels that received pixel data, in order
func (f *fixture) ramWrites() []display.Panel {
	var panels []display.Panel
	for _, fr := range f.rec.Frames() {
		if fr.Cmd != display.RAMWR {
			continue
		}
		p, ok := display.PanelFromCode(fr.Code)
		if !ok {
			continue
		}
		panels = append(panels, p)
	}
	return panels
}

// click presses and releases b across two frames
func (f *fixture) click(t *testing.T, b *button, now time.Time) {
	t.Helper()
	b.down = true
	if err := f.clock.Frame(now); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	b.down = false
	if err := f.clock.Frame(now); err != nil {
		t.Fatalf("Frame: %v", err)
	}
}

func TestInit(t *testing.T) {
	f := newFixture(t)
	f.rtc.Registers[0x0E] = 1 << 7 // oscillator stopped

	if err := f.clock.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if f.rtc.Registers[0x0E]&(1<<7) != 0 {
		t.Error("RTC oscillator not started")
	}
	if got := f.env.Registers[0xF4]; got != 0x27 {
		t.Errorf("ctrl_meas = 0x%02X, want 0x27", got)
	}
	if len(f.pwm.Duties) == 0 || f.pwm.Duties[len(f.pwm.Duties)-1] != BrightnessDuty(DefaultBrightness) {
		t.Errorf("backlight duties %v, want last %d", f.pwm.Duties, BrightnessDuty(DefaultBrightness))
	}
	if got := f.ramWrites(); len(got) < display.NumPanels {
		t.Errorf("%d panels cleared, want %d", len(got), display.NumPanels)
	}
}

func TestInitKeepsGoingWithoutEnvSensor(t *testing.T) {
	f := newFixture(t)
	f.env.Registers[0xD0] = 0x58 // BMP280

	err := f.clock.Init()
	if !errors.Is(err, core.ErrSetupFailure) || !errors.Is(err, i2cbus.ErrWrongChipID) {
		t.Fatalf("Init = %v, want wrong chip id", err)
	}
	if len(f.ramWrites()) == 0 {
		t.Error("panels not initialised after a sensor failure")
	}
	if _, err := f.clock.ReadTime(); err != nil {
		t.Errorf("RTC unusable after env failure: %v", err)
	}
}

func TestShowTimeRedrawsChangedDigits(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	if err := f.clock.ShowTime(time.Date(2026, 1, 1, 12, 34, 56, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if got := f.ramWrites(); len(got) != display.NumPanels {
		t.Fatalf("first draw wrote %v, want every panel", got)
	}

	f.rec.Reset()
	if err := f.clock.ShowTime(time.Date(2026, 1, 1, 12, 34, 57, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if got := f.ramWrites(); len(got) != 1 || got[0] != display.D6 {
		t.Errorf("second draw wrote %v, want only D6", got)
	}

	// a fill invalidates that panel
	f.rec.Reset()
	if err := f.clock.Fill(display.D1, core.Red.RGB565()); err != nil {
		t.Fatal(err)
	}
	if err := f.clock.ShowTime(time.Date(2026, 1, 1, 12, 34, 57, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if got := f.ramWrites(); len(got) != 2 || got[1] != display.D1 {
		t.Errorf("after fill wrote %v, want fill then D1 redraw", got)
	}
}

func TestGlyphs(t *testing.T) {
	ts := time.Date(2026, 3, 7, 9, 5, 1, 0, time.UTC)
	if got := timeGlyphs(ts); got != "090501" {
		t.Errorf("timeGlyphs = %q", got)
	}
	if got := dateGlyphs(ts); got != "070326" {
		t.Errorf("dateGlyphs = %q", got)
	}

	tests := []struct {
		m    i2cbus.Measurement
		want string
	}{
		{i2cbus.Measurement{Temperature: 21500, Humidity: 4512}, "21C45%"},
		{i2cbus.Measurement{Temperature: 5000, Humidity: 100}, " 5C 1%"},
		{i2cbus.Measurement{Temperature: -7000, Humidity: 10000}, "-7C00%"},
	}
	for _, tt := range tests {
		if got := envGlyphs(tt.m); got != tt.want {
			t.Errorf("envGlyphs(%+v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestSetAndReadTime(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	want := time.Date(2026, 10, 18, 21, 4, 33, 0, time.UTC)
	if err := f.clock.SetTime(want); err != nil {
		t.Fatal(err)
	}
	got, err := f.clock.ReadTime()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("ReadTime = %v, want %v", got, want)
	}
}

func TestFrameFollowsButtons(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	if err := f.clock.Frame(now); err != nil {
		t.Fatal(err)
	}
	if len(f.ramWrites()) != display.NumPanels {
		t.Fatal("first frame did not draw the time")
	}

	f.click(t, f.mode, now)
	if m := f.clock.State().Mode(); m.Screen != ScreenMenu || m.Option != OptionReturn {
		t.Fatalf("mode = %+v, want menu on return", m)
	}

	// left to brightness, enter, step up twice
	f.click(t, f.left, now)
	f.click(t, f.left, now)
	f.click(t, f.mode, now)
	if m := f.clock.State().Mode(); m.Screen != ScreenSetBrightness {
		t.Fatalf("mode = %+v, want set-brightness", m)
	}
	f.click(t, f.right, now)
	f.click(t, f.right, now)
	if got := f.pwm.Duties[len(f.pwm.Duties)-1]; got != BrightnessDuty(MaxBrightness) {
		t.Errorf("duty = %d, want %d", got, BrightnessDuty(MaxBrightness))
	}
}

func TestFrameTicksOnlyOnNewSecond(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	f.clock.Frame(now)
	f.rec.Reset()
	f.clock.Frame(now.Add(500 * time.Millisecond))
	if n := len(f.ramWrites()); n != 0 {
		t.Errorf("redrew %d panels within the same second", n)
	}
	f.clock.Frame(now.Add(time.Second))
	if got := f.ramWrites(); len(got) != 1 || got[0] != display.D6 {
		t.Errorf("new second wrote %v, want D6", got)
	}
}

func TestStripColorOverridesAnimation(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	f.clock.StripColor(core.RGB8{R: 1, G: 2, B: 3})
	f.clock.Frame(now)
	if f.fifo.last != ledstrip.Pack(1, 2, 3) {
		t.Errorf("strip word 0x%08X, want fixed color", f.fifo.last)
	}

	f.clock.SetStripMode(ledstrip.ModeOff)
	f.clock.Frame(now)
	if f.fifo.last != 0 {
		t.Errorf("strip word 0x%08X, want off", f.fifo.last)
	}
}

func TestButtonStripModeClearsLinkColor(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	f.clock.StripColor(core.RGB8{R: 1, G: 2, B: 3})

	// menu, left three times to RGB, enter, step the mode once
	f.click(t, f.mode, now)
	for i := 0; i < 3; i++ {
		f.click(t, f.left, now)
	}
	f.click(t, f.mode, now)
	if m := f.clock.State().Mode(); m.Screen != ScreenSetRgb {
		t.Fatalf("mode = %+v, want set-rgb", m)
	}
	if f.fifo.last != ledstrip.Pack(1, 2, 3) {
		t.Errorf("link color lost before the mode changed: 0x%08X", f.fifo.last)
	}

	f.click(t, f.right, now)
	if m := f.clock.State().Strip().Mode; m != ledstrip.ModeRed {
		t.Fatalf("strip mode = %s, want red", m)
	}
	red := core.Red.Scale(ledstrip.DefaultBrightness)
	if want := ledstrip.Pack(red.R, red.G, red.B); f.fifo.last != want {
		t.Errorf("strip word 0x%08X, want red 0x%08X", f.fifo.last, want)
	}
}

package ledstrip

import "lcdclock/core"

// Mode is a strip lighting mode. Every mode paints the whole strip one color.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeRainbow
	ModeRed
	ModeGreen
	ModeBlue
	ModeYellow
	ModeCyan
	ModePink

	numModes
)

var modeNames = [numModes]string{"off", "rainbow", "red", "green", "blue", "yellow", "cyan", "pink"}

var modeColors = [numModes]core.RGB8{
	ModeRed:    core.Red,
	ModeGreen:  core.Green,
	ModeBlue:   core.Blue,
	ModeYellow: core.Yellow,
	ModeCyan:   core.Cyan,
	ModePink:   core.Pink,
}

func (m Mode) String() string {
	if m >= numModes {
		return "unknown"
	}
	return modeNames[m]
}

// Valid reports whether m names a mode
func (m Mode) Valid() bool {
	return m < numModes
}

// ParseMode looks a mode up by name
func ParseMode(name string) (Mode, bool) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), true
		}
	}
	return 0, false
}

// Next cycles forward through the modes
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

// Prev cycles backward through the modes
func (m Mode) Prev() Mode {
	return (m + numModes - 1) % numModes
}

// DefaultBrightness scales mode colors down so the strip does not outshine the panels
const DefaultBrightness = 0x40

// Animator produces the strip color for the current mode, one frame per Tick
type Animator struct {
	Mode       Mode
	Brightness uint8
	HueStep    uint16 // degrees per tick in rainbow mode

	hue uint16
}

// NewAnimator starts in rainbow mode
func NewAnimator() *Animator {
	return &Animator{Mode: ModeRainbow, Brightness: DefaultBrightness, HueStep: 2}
}

// SetMode switches mode and restarts the rainbow sweep
func (a *Animator) SetMode(m Mode) {
	a.Mode = m % numModes
	a.hue = 0
}

// Tick advances one frame and returns the color to display
func (a *Animator) Tick() core.RGB8 {
	var c core.RGB8
	switch a.Mode {
	case ModeOff:
		return core.Black
	case ModeRainbow:
		c = core.HSV(a.hue, 0xff, 0xff)
		a.hue = (a.hue + a.HueStep) % 360
	default:
		c = modeColors[a.Mode%numModes]
	}
	return c.Scale(a.Brightness)
}

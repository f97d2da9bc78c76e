package clock

import (
	"lcdclock/buttons"
	"lcdclock/core"
	"lcdclock/ledstrip"
)

// Screen is one page of the clock's UI
type Screen uint8

const (
	ScreenRegular Screen = iota
	ScreenMenu
	ScreenSetTime
	ScreenSetAlarm
	ScreenSetRgb
	ScreenSetBrightness
	ScreenTempHumidity
)

var screenNames = [...]string{"regular", "menu", "set-time", "set-alarm", "set-rgb", "set-brightness", "temp-humidity"}

func (s Screen) String() string {
	if int(s) >= len(screenNames) {
		return "unknown"
	}
	return screenNames[s]
}

// View selects between the time and date pages of a screen
type View uint8

const (
	ViewTime View = iota
	ViewDate
)

// Toggle switches between time and date
func (v View) Toggle() View {
	return v ^ 1
}

// MenuOption is an entry of the main menu
type MenuOption uint8

const (
	OptionSetTime MenuOption = iota
	OptionSetAlarm
	OptionSetRgb
	OptionSetBrightness
	OptionTempHumidity
	OptionReturn

	numOptions
)

// Labels are spelled one letter per panel
var optionLabels = [numOptions]string{"TIME", "ALARM", "RGB", "BRIGHT", "ENV", "BACK"}

func (o MenuOption) String() string {
	if o >= numOptions {
		return "?"
	}
	return optionLabels[o]
}

func (o MenuOption) Next() MenuOption { return (o + 1) % numOptions }
func (o MenuOption) Prev() MenuOption { return (o + numOptions - 1) % numOptions }

// screen entered from each menu option
var optionScreens = [numOptions]Screen{
	OptionSetTime:       ScreenSetTime,
	OptionSetAlarm:      ScreenSetAlarm,
	OptionSetRgb:        ScreenSetRgb,
	OptionSetBrightness: ScreenSetBrightness,
	OptionTempHumidity:  ScreenTempHumidity,
	OptionReturn:        ScreenRegular,
}

// Mode is the full UI position. View is used by the regular, set-time
// and set-alarm screens; Option only by the menu.
type Mode struct {
	Screen Screen
	View   View
	Option MenuOption
}

var regular = Mode{Screen: ScreenRegular, View: ViewTime}

// MaxBrightness is the top brightness step
const MaxBrightness = 9

// DefaultBrightness is the step used at power-on
const DefaultBrightness = 7

// BrightnessDuty maps a step 0..MaxBrightness to a backlight duty.
// Step 0 is dim, not off.
func BrightnessDuty(step uint8) uint16 {
	if step > MaxBrightness {
		step = MaxBrightness
	}
	return uint16((uint32(step) + 1) * core.PWMMax / (MaxBrightness + 1))
}

// State is the UI state machine. Button events go in through
// HandleButtons; the owner redraws whenever EatTransition reports a change.
type State struct {
	mode       Mode
	last       Mode
	strip      *ledstrip.Animator
	brightness uint8
	transition bool
	modeDown   bool

	// a fixed color overrides the animation until the strip mode changes
	fixed      bool
	fixedColor core.RGB8
}

// NewState starts on the regular time screen with a pending transition so
// the first frame is drawn
func NewState(strip *ledstrip.Animator, brightness uint8) *State {
	if brightness > MaxBrightness {
		brightness = MaxBrightness
	}
	return &State{
		mode:       regular,
		last:       regular,
		strip:      strip,
		brightness: brightness,
		transition: true,
	}
}

func (s *State) Mode() Mode                { return s.mode }
func (s *State) LastMode() Mode            { return s.last }
func (s *State) Brightness() uint8         { return s.brightness }
func (s *State) Strip() *ledstrip.Animator { return s.strip }
func (s *State) Duty() uint16              { return BrightnessDuty(s.brightness) }
func (s *State) ModeHeld() bool            { return s.modeDown }

// SetStripMode switches the strip animation and drops any fixed color
func (s *State) SetStripMode(m ledstrip.Mode) {
	s.fixed = false
	s.strip.SetMode(m)
	s.transition = true
}

// SetStripColor holds the strip on c until the next SetStripMode
func (s *State) SetStripColor(c core.RGB8) {
	s.fixed = true
	s.fixedColor = c
}

// EatTransition reports whether anything changed since the last call and clears the flag
func (s *State) EatTransition() bool {
	t := s.transition
	s.transition = false
	return t
}

// Invalidate forces a redraw on the next EatTransition
func (s *State) Invalidate() {
	s.transition = true
}

// Update advances the strip animation by one frame and returns the color
// to show
func (s *State) Update() core.RGB8 {
	c := s.strip.Tick()
	if s.fixed {
		return s.fixedColor
	}
	return c
}

// HandleButtons feeds one poll of the three buttons. Only releases act;
// the mode button's press is tracked so that left and right can tell
// whether it is being held.
func (s *State) HandleButtons(mode, left, right buttons.Event) {
	s.last = s.mode

	switch mode {
	case buttons.Press:
		s.modeDown = true
	case buttons.Release:
		s.modeDown = false
	}

	m := mode == buttons.Release
	l := left == buttons.Release
	r := right == buttons.Release

	switch s.mode.Screen {
	case ScreenRegular:
		switch {
		case m:
			s.enter(Mode{Screen: ScreenMenu, Option: OptionReturn})
		case l || r:
			s.enter(Mode{Screen: ScreenRegular, View: s.mode.View.Toggle()})
		}

	case ScreenMenu:
		switch {
		case m:
			s.enter(Mode{Screen: optionScreens[s.mode.Option]})
		case l:
			s.enter(Mode{Screen: ScreenMenu, Option: s.mode.Option.Prev()})
		case r:
			s.enter(Mode{Screen: ScreenMenu, Option: s.mode.Option.Next()})
		}

	case ScreenSetTime, ScreenSetAlarm:
		// with mode held, left and right are reserved for editing fields
		if !s.modeDown && (l || r) {
			s.enter(Mode{Screen: s.mode.Screen, View: s.mode.View.Toggle()})
		}
		if m {
			s.enter(regular)
		}

	case ScreenSetRgb:
		switch {
		case l:
			s.SetStripMode(s.strip.Mode.Prev())
		case r:
			s.SetStripMode(s.strip.Mode.Next())
		}
		if m {
			s.enter(regular)
		}

	case ScreenSetBrightness:
		switch {
		case l && s.brightness > 0:
			s.SetBrightness(s.brightness - 1)
		case r:
			s.SetBrightness(s.brightness + 1)
		}
		if m {
			s.enter(regular)
		}

	case ScreenTempHumidity:
		if m {
			s.enter(regular)
		}
	}
}

// SetBrightness selects a step, clamped to MaxBrightness
func (s *State) SetBrightness(step uint8) {
	if step > MaxBrightness {
		step = MaxBrightness
	}
	s.brightness = step
	s.transition = true
}

func (s *State) enter(m Mode) {
	s.mode = m
	s.transition = true
}

// Package displaytest records the traffic of a display.Driver for tests.
package displaytest

import (
	"errors"

	"lcdclock/core"
	"lcdclock/display"
)

// ErrInjected is returned by Tx once the configured failure point is reached
var ErrInjected = errors.New("injected bus failure")

// Deselected is the select code observed when no panel is addressed
const Deselected = 0b111

// Event is one pin change or one SPI transfer
type Event struct {
	Pin   string // set for pin changes
	Level bool
	Cmd   bool   // transfer sent with DC low
	Bytes []byte // transfer payload
	Code  uint8  // select code while the transfer ran
}

// Frame is a command byte with all data bytes that followed it
type Frame struct {
	Cmd  byte
	Data []byte
	Code uint8
}

// Recorder implements drivers.SPI and the panel control pins
type Recorder struct {
	Events []Event

	// FailAt makes the Nth transfer (1-based) and every later one fail; 0 never fails
	FailAt int

	levels map[string]bool
	txs    int
}

// NewRecorder returns a recorder with every line low
func NewRecorder() *Recorder {
	return &Recorder{levels: make(map[string]bool)}
}

// Pins returns control lines wired to the recorder
func (r *Recorder) Pins() display.Pins {
	return display.Pins{
		CSA1: r.pin("CSA1"),
		CSA2: r.pin("CSA2"),
		CSA3: r.pin("CSA3"),
		DC:   r.pin("DC"),
		RST:  r.pin("RST"),
	}
}

func (r *Recorder) pin(name string) core.OutputPin {
	return core.PinFunc(func(high bool) {
		r.levels[name] = high
		r.Events = append(r.Events, Event{Pin: name, Level: high})
	})
}

// SelectCode returns the code currently on CSA1..CSA3
func (r *Recorder) SelectCode() uint8 {
	var code uint8
	if r.levels["CSA1"] {
		code |= 0b001
	}
	if r.levels["CSA2"] {
		code |= 0b010
	}
	if r.levels["CSA3"] {
		code |= 0b100
	}
	return code
}

// Level returns the current level of a pin
func (r *Recorder) Level(name string) bool {
	return r.levels[name]
}

func (r *Recorder) Tx(w, _ []byte) error {
	r.txs++
	if r.FailAt > 0 && r.txs >= r.FailAt {
		return ErrInjected
	}
	b := make([]byte, len(w))
	copy(b, w)
	r.Events = append(r.Events, Event{
		Cmd:   !r.levels["DC"],
		Bytes: b,
		Code:  r.SelectCode(),
	})
	return nil
}

func (r *Recorder) Transfer(b byte) (byte, error) {
	return 0, r.Tx([]byte{b}, nil)
}

// Transfers returns only the SPI transfers
func (r *Recorder) Transfers() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Pin == "" {
			out = append(out, e)
		}
	}
	return out
}

// Frames groups transfers into commands with their concatenated data
func (r *Recorder) Frames() []Frame {
	var frames []Frame
	for _, e := range r.Transfers() {
		if e.Cmd {
			for _, c := range e.Bytes {
				frames = append(frames, Frame{Cmd: c, Code: e.Code})
			}
			continue
		}
		if len(frames) == 0 {
			frames = append(frames, Frame{Code: e.Code})
		}
		last := &frames[len(frames)-1]
		last.Data = append(last.Data, e.Bytes...)
	}
	return frames
}

// Reset drops the recorded events but keeps pin levels
func (r *Recorder) Reset() {
	r.Events = nil
	r.txs = 0
}

// PWM records backlight duty values
type PWM struct {
	Duties []uint16
	Err    error
}

func (p *PWM) SetDuty(value uint16) error {
	if p.Err != nil {
		return p.Err
	}
	p.Duties = append(p.Duties, value)
	return nil
}

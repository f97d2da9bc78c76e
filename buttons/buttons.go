// Package buttons debounces the clock's push buttons and reports press and
// release edges.
package buttons

import "lcdclock/core"

// Event is a debounced button transition
type Event uint8

const (
	None Event = iota
	Press
	Release
)

func (e Event) String() string {
	switch e {
	case Press:
		return "press"
	case Release:
		return "release"
	}
	return "none"
}

// DefaultIntegrator is the number of agreeing samples needed to change state
const DefaultIntegrator = 5

// Debounce is an integrating debouncer for an active-high button on a
// pulled-down input.
// Each Update moves the integrator one step toward the sampled level; the
// output changes only when the integrator reaches either end.
type Debounce struct {
	pin        core.InputPin
	integrator uint32
	max        uint32
	pressed    bool
}

// NewDebounce samples pin; max == 0 selects DefaultIntegrator
func NewDebounce(pin core.InputPin, max uint32) *Debounce {
	if max == 0 {
		max = DefaultIntegrator
	}
	return &Debounce{pin: pin, max: max}
}

// Pressed returns the debounced state
func (d *Debounce) Pressed() bool {
	return d.pressed
}

// Update takes one sample
func (d *Debounce) Update() {
	if !d.pin.Get() {
		if d.integrator > 0 {
			d.integrator--
		}
	} else if d.integrator < d.max {
		d.integrator++
	}

	switch d.integrator {
	case 0:
		d.pressed = false
	case d.max:
		d.pressed = true
	}
}

// Button turns debounced state into edges
type Button struct {
	in      *Debounce
	pressed bool
}

// New wraps a debouncer
func New(in *Debounce) *Button {
	return &Button{in: in}
}

// Pressed returns the debounced state
func (b *Button) Pressed() bool {
	return b.in.Pressed()
}

// Update samples the pin and returns the edge crossed since the last call, if any
func (b *Button) Update() Event {
	b.in.Update()
	now := b.in.Pressed()
	if now == b.pressed {
		return None
	}
	b.pressed = now
	if now {
		return Press
	}
	return Release
}

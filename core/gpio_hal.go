package core

// OutputPin is a digital output line.
// machine.Pin satisfies it on hardware targets.
type OutputPin interface {
	// Set drives the pin high (true) or low (false)
	Set(high bool)
}

// PinFunc adapts a plain function to OutputPin
type PinFunc func(high bool)

func (f PinFunc) Set(high bool) {
	f(high)
}

// InputPin is a digital input line
type InputPin interface {
	// Get reads the pin level, true for high
	Get() bool
}

package core

// PWMMax is the full-scale duty value accepted by PWMChannel
const PWMMax = 0xFFFF

// PWMChannel is one configured PWM output.
// Platform-specific implementations handle the slice/channel mapping.
type PWMChannel interface {
	// SetDuty sets the duty cycle: 0 (fully off) to PWMMax (fully on)
	SetDuty(value uint16) error
}

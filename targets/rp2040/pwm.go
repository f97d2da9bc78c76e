//go:build rp2040

package main

import (
	"machine"

	"lcdclock/core"
)

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// backlight drives the panels' shared backlight from one PWM channel
type backlight struct {
	pwm     pwmPeripheral
	channel uint8
}

var _ core.PWMChannel = (*backlight)(nil)

// newBacklight configures pin on its slice. GPIO N maps to slice (N>>1)&7.
func newBacklight(pin machine.Pin, periodNs uint64) (*backlight, error) {
	pwm := pwmSlice(uint8(pin>>1) & 0x7)
	if err := pwm.Configure(machine.PWMConfig{Period: periodNs}); err != nil {
		return nil, core.Wrap(core.ErrSetupFailure, err)
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		return nil, core.Wrap(core.ErrSetupFailure, err)
	}
	return &backlight{pwm: pwm, channel: ch}, nil
}

// SetDuty scales 0..core.PWMMax onto the slice's counter range
func (b *backlight) SetDuty(value uint16) error {
	top := b.pwm.Top()
	b.pwm.Set(b.channel, uint32(uint64(value)*uint64(top)/core.PWMMax))
	return nil
}

func pwmSlice(n uint8) pwmPeripheral {
	switch n {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

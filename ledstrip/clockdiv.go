package ledstrip

import (
	"errors"

	"lcdclock/core"
)

// Divider is the PIO clock divider: Int + Frac/256 system cycles per PIO cycle
type Divider struct {
	Int  uint16
	Frac uint8
}

var errDividerRange = errors.New("clock divider out of range")

// ClockDivider computes the divider that runs the PIO at targetHz from a sysHz system clock.
// The integer part must be between 1 and 65535.
func ClockDivider(sysHz, targetHz uint32) (Divider, error) {
	if targetHz == 0 {
		return Divider{}, core.Wrap(core.ErrSetupFailure, errDividerRange)
	}
	whole := sysHz / targetHz
	if whole == 0 || whole > 0xFFFF {
		return Divider{}, core.Wrap(core.ErrSetupFailure, errDividerRange)
	}
	rem := sysHz - whole*targetHz
	frac := uint64(rem) * 256 / uint64(targetHz)
	return Divider{Int: uint16(whole), Frac: uint8(frac)}, nil
}

// Ratio256 returns the divider in 1/256 units
func (d Divider) Ratio256() uint32 {
	return uint32(d.Int)<<8 | uint32(d.Frac)
}

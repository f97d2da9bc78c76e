//go:build rp2040

package ledstrip

import (
	"errors"
	"machine"

	"lcdclock/core"

	pio "github.com/tinygo-org/pio/rp2-pio"
)

// Load at offset 0 so the assembled jump addresses stay valid
const programOrigin = 0

var errStateMachineBusy = errors.New("PIO state machine already claimed")

// New installs the bit-cell program on sm, drives pin from its side-set and
// returns a strip of count LEDs. Every failure here is core.ErrSetupFailure.
func New(sm pio.StateMachine, pin machine.Pin, count int) (*Strip, error) {
	div, err := ClockDivider(machine.CPUFrequency(), TargetHz)
	if err != nil {
		return nil, err
	}

	prog := WS2812Program()
	words, err := prog.Assemble()
	if err != nil {
		return nil, err
	}

	if !sm.TryClaim() {
		return nil, core.Wrap(core.ErrSetupFailure, errStateMachineBusy)
	}

	Pio := sm.PIO()
	offset, err := Pio.AddProgram(words, programOrigin)
	if err != nil {
		return nil, core.Wrap(core.ErrSetupFailure, err)
	}

	pin.Configure(machine.PinConfig{Mode: Pio.PinMode()})

	cfg := pio.DefaultStateMachineConfig()
	cfg.SetSidesetParams(prog.SideSetBits, false, false)
	cfg.SetSidesetPins(pin)
	// MSB first, autopull after the 24 color bits
	cfg.SetOutShift(false, true, 24)
	cfg.SetFIFOJoin(pio.FifoJoinTx)
	cfg.SetClkDivIntFrac(div.Int, div.Frac)
	cfg.SetWrap(offset+prog.WrapTarget, offset+prog.Wrap)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(pin, 1, true)
	sm.SetEnabled(true)

	core.DebugPrintln("[LED] strip on PIO, div=" + core.Itoa(int(div.Int)) + "+" + core.Itoa(int(div.Frac)) + "/256")

	return NewStrip(sm, count), nil
}

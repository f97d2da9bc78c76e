package i2cbus

import (
	"errors"

	"lcdclock/core"

	"tinygo.org/x/drivers"
)

var errDetached = errors.New("device is not checked out")

// tether is the drivers.I2C a parked device driver is built on.
// It forwards to the real bus only while the device is checked out, and
// tags every transport failure with ErrBusRead or ErrBusWrite.
type tether struct {
	bus drivers.I2C
	err error // first failure since attach
}

func (t *tether) Tx(addr uint16, w, r []byte) error {
	if t.bus == nil {
		return core.Wrap(core.ErrResourceUnavailable, errDetached)
	}
	err := t.bus.Tx(addr, w, r)
	if err == nil {
		return nil
	}
	kind := core.ErrBusWrite
	if len(r) > 0 {
		kind = core.ErrBusRead
	}
	err = core.Wrap(kind, err)
	if t.err == nil {
		t.err = err
	}
	return err
}

func (t *tether) attach(bus drivers.I2C) {
	t.bus = bus
	t.err = nil
}

func (t *tether) detach() drivers.I2C {
	bus := t.bus
	t.bus = nil
	return bus
}

// failure returns and clears the first recorded failure.
// Some drivers drop write errors; this is how they still reach the caller.
func (t *tether) failure() error {
	err := t.err
	t.err = nil
	return err
}

// Package i2cbus time-shares one I2C bus between the clock's RTC and its
// environmental sensor.
//
// The bus handle and each device's state live in slots. A With call moves
// both out, runs the operation on a driver built from them, and parks them
// again on the way out. A nested call on the same bus finds an empty slot
// and fails with core.ErrResourceUnavailable, so no lock is needed.
package i2cbus

import (
	"errors"

	"lcdclock/core"

	"tinygo.org/x/drivers"
)

// Device selects which state is checked out alongside the bus
type Device uint8

const (
	RTCDevice Device = iota
	EnvDevice
)

func (d Device) String() string {
	switch d {
	case RTCDevice:
		return "rtc"
	case EnvDevice:
		return "env"
	}
	return "unknown"
}

// Default addresses on the clock board
const (
	RTCAddress = 0x68
	EnvAddress = 0x76
)

// Driver is a device driver holding the bus for the duration of one With call.
// *RTC and *EnvSensor implement it.
type Driver interface {
	Device() Device
	tether() *tether
}

var (
	errBusBusy      = errors.New("i2c bus is checked out")
	errDeviceAbsent = errors.New("device state is checked out or not installed")
	errBadDevice    = errors.New("unknown device")
)

// Arbiter owns the bus handle and the per-device state
type Arbiter struct {
	bus drivers.I2C
	rtc *RTC
	env *EnvSensor
}

// New parks bus with no device state installed
func New(bus drivers.I2C) *Arbiter {
	return &Arbiter{bus: bus}
}

// AddRTC installs RTC state at addr, replacing any parked state
func (a *Arbiter) AddRTC(addr uint16) {
	a.rtc = newRTC(addr)
}

// AddEnvSensor installs environmental sensor state at addr, replacing any parked state
func (a *Arbiter) AddEnvSensor(addr uint16) {
	a.env = newEnvSensor(addr)
}

// Parked reports whether the bus and dev's state are both in their slots
func (a *Arbiter) Parked(dev Device) bool {
	if a.bus == nil {
		return false
	}
	switch dev {
	case RTCDevice:
		return a.rtc != nil
	case EnvDevice:
		return a.env != nil
	}
	return false
}

// WithRTC runs op with exclusive use of the bus and the RTC
func (a *Arbiter) WithRTC(op func(*RTC) error) error {
	return a.With(RTCDevice, func(d Driver) error {
		return op(d.(*RTC))
	})
}

// WithEnvSensor runs op with exclusive use of the bus and the environmental sensor
func (a *Arbiter) WithEnvSensor(op func(*EnvSensor) error) error {
	return a.With(EnvDevice, func(d Driver) error {
		return op(d.(*EnvSensor))
	})
}

// With checks out the bus and dev's state, runs op, and parks both again
// whether op returns or panics. op's error is returned unchanged.
func (a *Arbiter) With(dev Device, op func(Driver) error) error {
	drv, err := a.checkout(dev)
	if err != nil {
		return err
	}
	defer a.checkin(drv)
	return op(drv)
}

func (a *Arbiter) checkout(dev Device) (Driver, error) {
	if a.bus == nil {
		return nil, core.Wrap(core.ErrResourceUnavailable, errBusBusy)
	}

	var drv Driver
	switch dev {
	case RTCDevice:
		if a.rtc == nil {
			return nil, core.Wrap(core.ErrResourceUnavailable, errDeviceAbsent)
		}
		drv, a.rtc = a.rtc, nil
	case EnvDevice:
		if a.env == nil {
			return nil, core.Wrap(core.ErrResourceUnavailable, errDeviceAbsent)
		}
		drv, a.env = a.env, nil
	default:
		return nil, core.Wrap(core.ErrResourceUnavailable, errBadDevice)
	}

	drv.tether().attach(a.bus)
	a.bus = nil
	return drv, nil
}

func (a *Arbiter) checkin(drv Driver) {
	a.bus = drv.tether().detach()
	switch d := drv.(type) {
	case *RTC:
		a.rtc = d
	case *EnvSensor:
		a.env = d
	}
}

package i2cbus

import (
	"time"

	"tinygo.org/x/drivers/ds3231"
)

// RTC is the DS3231 real-time clock.
// Its methods reach the bus only inside Arbiter.WithRTC.
type RTC struct {
	link tether
	dev  ds3231.Device
}

func newRTC(addr uint16) *RTC {
	r := &RTC{}
	r.dev = ds3231.New(&r.link)
	r.dev.Address = addr
	return r
}

func (r *RTC) Device() Device  { return RTCDevice }
func (r *RTC) tether() *tether { return &r.link }

// Init starts the oscillator
func (r *RTC) Init() error {
	return r.dev.SetRunning(true)
}

// ReadTime returns the current date and time in UTC
func (r *RTC) ReadTime() (time.Time, error) {
	return r.dev.ReadTime()
}

// SetTime writes t and clears the oscillator-stopped flag
func (r *RTC) SetTime(t time.Time) error {
	return r.dev.SetTime(t.UTC())
}

// ReadTemperature returns the die temperature in m°C
func (r *RTC) ReadTemperature() (int32, error) {
	return r.dev.ReadTemperature()
}

// TimeValid reports whether the oscillator has run since the time was last set.
// A failed read reports false; the failure is returned as the error.
func (r *RTC) TimeValid() (bool, error) {
	valid := r.dev.IsTimeValid()
	if err := r.link.failure(); err != nil {
		return false, err
	}
	return valid, nil
}

//go:build rp2040

package main

import (
	"machine"

	"lcdclock/core"
	"lcdclock/i2cbus"
)

// configureSensorBus sets up I2C1 and parks it in an arbiter. The devices
// are installed by clock.Init.
func configureSensorBus() (*i2cbus.Arbiter, error) {
	i2c := machine.I2C1
	err := i2c.Configure(machine.I2CConfig{
		Frequency: i2cFrequency,
		SDA:       pinSDA,
		SCL:       pinSCL,
	})
	if err != nil {
		return nil, core.Wrap(core.ErrSetupFailure, err)
	}
	return i2cbus.New(i2c), nil
}

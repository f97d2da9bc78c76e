//go:build rp2040

package main

import "machine"

// Panel bus: three select lines into the decoder, shared DC and reset
const (
	pinCSA1 = machine.GPIO2
	pinCSA2 = machine.GPIO3
	pinCSA3 = machine.GPIO4
	pinDC   = machine.GPIO8
	pinRST  = machine.GPIO12

	pinSCK  = machine.GPIO10 // SPI1
	pinMOSI = machine.GPIO11
	pinBL   = machine.GPIO13 // backlight, PWM6 B

	pinSDA = machine.GPIO6 // I2C1
	pinSCL = machine.GPIO7

	pinLED = machine.GPIO22 // WS2812 data

	// buttons are pulled down and read high while pressed
	pinMode  = machine.GPIO17
	pinLeft  = machine.GPIO15
	pinRight = machine.GPIO16
)

const (
	spiFrequency = 62_500_000
	i2cFrequency = 400_000

	// backlight PWM period in nanoseconds (20 kHz, above audible)
	backlightPeriod = 50_000

	ledCount = 6

	// main loop period
	framePeriod = 20 // ms
)

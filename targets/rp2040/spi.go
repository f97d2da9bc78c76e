//go:build rp2040

package main

import (
	"machine"

	"lcdclock/core"
	"lcdclock/display"
)

// configurePanels sets up SPI1 and the panel control lines and returns the
// (not yet configured) display driver
func configurePanels(bl core.PWMChannel) (*display.Driver, error) {
	spi := machine.SPI1
	err := spi.Configure(machine.SPIConfig{
		Frequency: spiFrequency,
		SCK:       pinSCK,
		SDO:       pinMOSI,
		SDI:       machine.NoPin,
		Mode:      0,
	})
	if err != nil {
		return nil, core.Wrap(core.ErrSetupFailure, err)
	}

	for _, p := range []machine.Pin{pinCSA1, pinCSA2, pinCSA3, pinDC, pinRST} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}

	pins := display.Pins{CSA1: pinCSA1, CSA2: pinCSA2, CSA3: pinCSA3, DC: pinDC, RST: pinRST}
	return display.New(spi, pins, bl, display.Config{}), nil
}

// Package serial opens the clock's USB CDC port on the host.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is an open link to the clock
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Config selects and tunes the port
type Config struct {
	Device      string
	Baud        int           // ignored by USB CDC but required by the OS driver
	ReadTimeout time.Duration // 0 blocks
}

// DefaultConfig returns settings for device
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

type nativePort struct {
	*serial.Port
}

// Open opens the port described by cfg
func Open(cfg Config) (Port, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("no serial device configured")
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	return nativePort{p}, nil
}

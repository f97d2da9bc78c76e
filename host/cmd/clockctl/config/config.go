// Package config loads clockctl.yaml
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Timeouts struct {
	ReadMs     int `yaml:"read_ms"`
	AckMs      int `yaml:"ack_ms"`
	ResponseMs int `yaml:"response_ms"`
}

func (t Timeouts) Read() time.Duration     { return time.Duration(t.ReadMs) * time.Millisecond }
func (t Timeouts) Ack() time.Duration      { return time.Duration(t.AckMs) * time.Millisecond }
func (t Timeouts) Response() time.Duration { return time.Duration(t.ResponseMs) * time.Millisecond }

type Config struct {
	Device   string   `yaml:"device"` // e.g. /dev/ttyACM0
	Baud     int      `yaml:"baud"`
	LogLevel string   `yaml:"log_level"` // zerolog level name
	Timeouts Timeouts `yaml:"timeouts"`

	// Presets are extra color names usable wherever a color is expected, as "#rrggbb" or "0xrrggbb"
	Presets map[string]string `yaml:"presets,omitempty"`
}

func Default() *Config {
	return &Config{
		Device:   "/dev/ttyACM0",
		Baud:     115200,
		LogLevel: "info",
		Timeouts: Timeouts{ReadMs: 100, AckMs: 2000, ResponseMs: 1000},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

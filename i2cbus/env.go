package i2cbus

import (
	"errors"

	"lcdclock/core"

	"tinygo.org/x/drivers/bme280"
)

var (
	// ErrWrongChipID means the chip at the sensor address is not a BME280
	ErrWrongChipID = errors.New("unexpected BME280 chip id")
	// ErrNotConfigured means Read was called before a successful Init
	ErrNotConfigured = errors.New("BME280 not configured")
)

// Board settings: humidity favoured, one sample a second, no filtering
var envConfig = bme280.Config{
	Humidity:    bme280.Sampling16X,
	Temperature: bme280.Sampling1X,
	Pressure:    bme280.Sampling1X,
	Mode:        bme280.ModeNormal,
	Period:      bme280.Period1000ms,
	IIR:         bme280.Coeff0,
}

// Measurement is one compensated reading
type Measurement struct {
	Temperature int32 // m°C
	Pressure    int32 // mPa
	Humidity    int32 // hundredths of a percent
}

// EnvSensor is the BME280 temperature, pressure and humidity sensor.
// Calibration read by Init stays with the parked state between checkouts.
type EnvSensor struct {
	link       tether
	dev        bme280.Device
	configured bool
}

func newEnvSensor(addr uint16) *EnvSensor {
	s := &EnvSensor{}
	s.dev = bme280.New(&s.link)
	s.dev.Address = addr
	return s
}

func (s *EnvSensor) Device() Device  { return EnvDevice }
func (s *EnvSensor) tether() *tether { return &s.link }

// Configured reports whether Init has succeeded
func (s *EnvSensor) Configured() bool {
	return s.configured
}

// Init checks the chip id, loads the calibration and starts normal-mode sampling
func (s *EnvSensor) Init() error {
	s.configured = false
	s.link.failure()

	connected := s.dev.Connected()
	if err := s.link.failure(); err != nil {
		return err
	}
	if !connected {
		return core.Wrap(core.ErrSetupFailure, ErrWrongChipID)
	}

	s.dev.ConfigureWithSettings(envConfig)
	if err := s.link.failure(); err != nil {
		return err
	}
	s.configured = true
	return nil
}

// Read returns temperature, pressure and humidity from one burst each
func (s *EnvSensor) Read() (Measurement, error) {
	if !s.configured {
		return Measurement{}, ErrNotConfigured
	}
	var m Measurement
	var err error
	if m.Temperature, err = s.dev.ReadTemperature(); err != nil {
		return Measurement{}, err
	}
	if m.Pressure, err = s.dev.ReadPressure(); err != nil {
		return Measurement{}, err
	}
	if m.Humidity, err = s.dev.ReadHumidity(); err != nil {
		return Measurement{}, err
	}
	return m, nil
}

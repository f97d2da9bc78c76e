//go:build rp2040

package main

import (
	"machine"
	"time"

	"lcdclock/buttons"
	"lcdclock/clock"
	"lcdclock/core"
	"lcdclock/ledstrip"
	"lcdclock/protocol"

	pio "github.com/tinygo-org/pio/rp2-pio"
)

var (
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	link         *clock.Link

	msgerrors uint32

	usbWasDisconnected       bool
	consecutiveWriteFailures uint32
)

func main() {
	// clear any watchdog state left from before the reset
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitUSB()
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})
	core.InitAsyncDebug()

	c, err := setup()
	if err != nil {
		halt(err)
	}
	if err := c.Init(); err != nil {
		// a missing sensor still leaves a working clock face
		core.DebugError("init", err)
	}

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()
	link = clock.NewLink(c, outputBuffer)
	tr := link.Transport()
	tr.SetResetCallback(func() {
		inputBuffer.Reset()
		outputBuffer.Reset()
	})
	tr.SetFlushCallback(writeUSB)

	go usbReaderLoop()

	var lastFrame uint64
	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			if inputBuffer.Available() > 0 {
				link.Receive(inputBuffer)
			}
			if len(outputBuffer.Result()) > 0 {
				writeUSB()
			}

			if now := uptimeMicros(); now-lastFrame >= framePeriod*1000 {
				lastFrame = now
				t, err := c.ReadTime()
				if err != nil {
					t = time.Now()
				}
				if err := c.Frame(t); err != nil {
					core.DebugAsync("frame: " + err.Error())
				}
			}
		}()

		time.Sleep(100 * time.Microsecond)
	}
}

// setup configures every peripheral and wires them into a clock
func setup() (*clock.Clock, error) {
	bl, err := newBacklight(pinBL, backlightPeriod)
	if err != nil {
		return nil, err
	}
	panels, err := configurePanels(bl)
	if err != nil {
		return nil, err
	}
	bus, err := configureSensorBus()
	if err != nil {
		return nil, err
	}
	strip, err := ledstrip.New(pio.PIO0.StateMachine(0), pinLED, ledCount)
	if err != nil {
		return nil, err
	}

	return clock.New(clock.Hardware{
		Bus:         bus,
		Display:     panels,
		Strip:       strip,
		ModeButton:  newButton(pinMode),
		LeftButton:  newButton(pinLeft),
		RightButton: newButton(pinRight),
	}), nil
}

func newButton(pin machine.Pin) *buttons.Button {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return buttons.New(buttons.NewDebounce(pin, 0))
}

// halt blinks the error until reset
func halt(err error) {
	core.SetDebugEnabled(true)
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		core.DebugPrintln("[FATAL] " + err.Error())
		for i := 0; i < 5; i++ {
			led.High()
			time.Sleep(100 * time.Millisecond)
			led.Low()
			time.Sleep(100 * time.Millisecond)
		}
		time.Sleep(time.Second)
	}
}

// usbReaderLoop moves bytes from USB into the input FIFO
func usbReaderLoop() {
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		if USBAvailable() > 0 {
			b, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(time.Millisecond)
				continue
			}

			if usbWasDisconnected {
				usbWasDisconnected = false
				inputBuffer.Reset()
				outputBuffer.Reset()
				link.Transport().Reset()
				consecutiveWriteFailures = 0
			}

			if inputBuffer.Write([]byte{b}) == 0 {
				msgerrors++
				time.Sleep(10 * time.Millisecond)
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// writeUSB drains the output buffer, treating repeated failures as a disconnect
func writeUSB() {
	result := outputBuffer.Result()
	written := 0
	for written < len(result) {
		n, err := USBWriteBytes(result[written:])
		if err != nil || n == 0 {
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				usbWasDisconnected = true
				consecutiveWriteFailures = 0
				outputBuffer.Reset()
				inputBuffer.Reset()
			}
			return
		}
		written += n
	}
	consecutiveWriteFailures = 0
	outputBuffer.Reset()
}

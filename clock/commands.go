package clock

import (
	"errors"
	"time"

	"lcdclock/core"
	"lcdclock/display"
	"lcdclock/ledstrip"
	"lcdclock/protocol"
)

// Link serves the control link. Every command gets exactly one reply:
// its data response, done, or error carrying the failure's kind code.
type Link struct {
	clock *Clock
	reg   *core.CommandRegistry
	tr    *protocol.Transport

	identifyResponseID uint16
	errorID            uint16
	doneID             uint16
	timeID             uint16
	envID              uint16
}

// NewLink registers the clock's commands and returns a link writing its
// acknowledgements and responses to output
func NewLink(c *Clock, output protocol.OutputBuffer) *Link {
	l := &Link{clock: c, reg: core.NewCommandRegistry()}
	l.tr = protocol.NewTransport(output, l.reg.Dispatch)
	l.tr.SetErrorCallback(l.reportError)

	// identify_response and identify hold the fixed IDs 0 and 1
	l.identifyResponseID = l.reg.RegisterResponse(protocol.MsgIdentifyResponse, protocol.FmtIdentifyResponse)
	l.reg.Register(protocol.MsgIdentify, protocol.FmtIdentify, l.handleIdentify)
	l.errorID = l.reg.RegisterResponse(protocol.MsgError, protocol.FmtError)
	l.doneID = l.reg.RegisterResponse(protocol.MsgDone, protocol.FmtDone)

	l.command(protocol.MsgFill, protocol.FmtFill, l.handleFill)
	l.command(protocol.MsgBrightness, protocol.FmtBrightness, l.handleBrightness)
	l.command(protocol.MsgStrip, protocol.FmtStrip, l.handleStrip)
	l.command(protocol.MsgStripMode, protocol.FmtStripMode, l.handleStripMode)
	l.reg.Register(protocol.MsgGetTime, "", l.handleGetTime)
	l.timeID = l.reg.RegisterResponse(protocol.MsgTime, protocol.FmtTime)
	l.command(protocol.MsgSetTime, protocol.FmtSetTime, l.handleSetTime)
	l.reg.Register(protocol.MsgGetEnv, "", l.handleGetEnv)
	l.envID = l.reg.RegisterResponse(protocol.MsgEnv, protocol.FmtEnv)
	l.command(protocol.MsgShowTime, "", l.handleShowTime)
	l.command(protocol.MsgDebug, protocol.FmtDebug, l.handleDebug)

	core.DebugPrintln("[LINK] " + core.Itoa(l.reg.Count()) + " messages registered")
	return l
}

// Transport returns the link's transport, for callbacks and counters
func (l *Link) Transport() *protocol.Transport {
	return l.tr
}

// Dictionary returns the text served by identify
func (l *Link) Dictionary() string {
	return l.reg.GetDictionary()
}

// Receive handles every complete frame in input
func (l *Link) Receive(input protocol.InputBuffer) {
	l.tr.Receive(input)
}

// command registers a handler that has no data response; done is sent once it succeeds
func (l *Link) command(name, format string, h core.CommandHandler) {
	var id uint16
	id = l.reg.Register(name, format, func(data *[]byte) error {
		if err := h(data); err != nil {
			return err
		}
		l.tr.Send(l.doneID, func(o protocol.OutputBuffer) {
			protocol.EncodeVLQUint(o, uint32(id))
		})
		return nil
	})
}

func (l *Link) reportError(cmd uint16, err error) {
	core.DebugError("cmd "+core.Itoa(int(cmd)), err)
	l.tr.Send(l.errorID, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(cmd))
		protocol.EncodeVLQUint(o, uint32(core.KindCode(err)))
	})
}

// args decodes n unsigned arguments
func args(data *[]byte, n int) ([]uint32, error) {
	v := make([]uint32, n)
	for i := range v {
		x, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return v, nil
}

func outOfRange(name string, v uint32) error {
	return core.Wrap(core.ErrOutOfBounds, errors.New(name+" "+core.Utoa(v)))
}

func (l *Link) handleIdentify(data *[]byte) error {
	a, err := args(data, 2)
	if err != nil {
		return err
	}
	offset, count := a[0], a[1]
	if count > protocol.IdentifyChunk {
		count = protocol.IdentifyChunk
	}

	dict := l.reg.GetDictionary()
	var chunk []byte
	if int(offset) < len(dict) {
		end := int(offset) + int(count)
		if end > len(dict) {
			end = len(dict)
		}
		chunk = []byte(dict[offset:end])
	}
	l.tr.Send(l.identifyResponseID, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, offset)
		protocol.EncodeVLQBytes(o, chunk)
	})
	return nil
}

func (l *Link) handleFill(data *[]byte) error {
	a, err := args(data, 2)
	if err != nil {
		return err
	}
	if a[0] >= display.NumPanels {
		return outOfRange("panel", a[0])
	}
	if a[1] > 0xFFFF {
		return outOfRange("color", a[1])
	}
	return l.clock.Fill(display.Panel(a[0]), core.RGB565(a[1]))
}

func (l *Link) handleBrightness(data *[]byte) error {
	a, err := args(data, 1)
	if err != nil {
		return err
	}
	if a[0] > core.PWMMax {
		return outOfRange("level", a[0])
	}
	return l.clock.SetBrightness(uint16(a[0]))
}

func (l *Link) handleStrip(data *[]byte) error {
	a, err := args(data, 3)
	if err != nil {
		return err
	}
	for _, v := range a {
		if v > 0xFF {
			return outOfRange("channel", v)
		}
	}
	l.clock.StripColor(core.RGB8{R: uint8(a[0]), G: uint8(a[1]), B: uint8(a[2])})
	return nil
}

func (l *Link) handleStripMode(data *[]byte) error {
	a, err := args(data, 1)
	if err != nil {
		return err
	}
	m := ledstrip.Mode(a[0])
	if a[0] > 0xFF || !m.Valid() {
		return outOfRange("mode", a[0])
	}
	l.clock.SetStripMode(m)
	return nil
}

func (l *Link) handleGetTime(*[]byte) error {
	t, err := l.clock.ReadTime()
	if err != nil {
		return err
	}
	l.tr.Send(l.timeID, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(t.Unix()))
	})
	return nil
}

func (l *Link) handleSetTime(data *[]byte) error {
	a, err := args(data, 1)
	if err != nil {
		return err
	}
	return l.clock.SetTime(time.Unix(int64(a[0]), 0))
}

func (l *Link) handleGetEnv(*[]byte) error {
	m, err := l.clock.ReadEnvironment()
	if err != nil {
		return err
	}
	l.tr.Send(l.envID, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQInt(o, m.Temperature)
		protocol.EncodeVLQInt(o, m.Pressure)
		protocol.EncodeVLQInt(o, m.Humidity)
	})
	return nil
}

func (l *Link) handleShowTime(*[]byte) error {
	t, err := l.clock.ReadTime()
	if err != nil {
		return err
	}
	return l.clock.ShowTime(t)
}

// handleDebug switches the firmware's debug text on the link; it shares the
// USB port with the frames, which the host's scanner skips over
func (l *Link) handleDebug(data *[]byte) error {
	a, err := args(data, 1)
	if err != nil {
		return err
	}
	if a[0] > 1 {
		return outOfRange("enable", a[0])
	}
	core.SetDebugEnabled(a[0] == 1)
	return nil
}

// Package link is the host-side client of the clock's control link.
package link

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lcdclock/core"
	"lcdclock/protocol"

	"github.com/rs/zerolog"
)

// Options tune a Client
type Options struct {
	AckTimeout      time.Duration
	ResponseTimeout time.Duration
	Logger          zerolog.Logger
}

func (o *Options) applyDefaults() {
	if o.AckTimeout == 0 {
		o.AckTimeout = 2 * time.Second
	}
	if o.ResponseTimeout == 0 {
		o.ResponseTimeout = time.Second
	}
}

// RemoteError is a command failure reported by the clock.
// errors.Is matches it against the core error kinds.
type RemoteError struct {
	Command string
	Kind    error // nil when the clock reported a kind this host does not know
	Code    uint8
}

func (e *RemoteError) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("%s: clock error %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Kind)
}

func (e *RemoteError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Env is a reading of the environmental sensor
type Env struct {
	Temperature float64 // °C
	Pressure    float64 // hPa
	Humidity    float64 // %
}

// Client issues commands to one clock
type Client struct {
	tr   *Transport
	opts Options
	log  zerolog.Logger

	dictionary string
	ids        map[string]uint16
	names      map[uint16]string
}

// NewClient wraps an open transport. Call Identify before any other command.
func NewClient(tr *Transport, opts Options) *Client {
	opts.applyDefaults()
	return &Client{tr: tr, opts: opts, log: opts.Logger}
}

// Close closes the transport
func (c *Client) Close() error {
	return c.tr.Close()
}

// Dictionary returns the text retrieved by Identify
func (c *Client) Dictionary() string {
	return c.dictionary
}

// Identify downloads the message dictionary and learns the message IDs
func (c *Client) Identify() error {
	c.tr.Resync()

	var b strings.Builder
	for offset := uint32(0); ; {
		chunk, err := c.identifyChunk(offset)
		if err != nil {
			return fmt.Errorf("identify at %d: %w", offset, err)
		}
		b.Write(chunk)
		offset += uint32(len(chunk))
		if len(chunk) < protocol.IdentifyChunk {
			break
		}
	}

	c.dictionary = b.String()
	c.ids = core.ParseDictionary(c.dictionary)
	c.names = make(map[uint16]string, len(c.ids))
	for name, id := range c.ids {
		c.names[id] = name
	}
	for _, name := range []string{protocol.MsgError, protocol.MsgDone} {
		if _, ok := c.ids[name]; !ok {
			return fmt.Errorf("dictionary lacks %q", name)
		}
	}
	c.log.Debug().Int("bytes", b.Len()).Int("messages", len(c.ids)).Msg("dictionary loaded")
	return nil
}

func (c *Client) identifyChunk(offset uint32) ([]byte, error) {
	err := c.tr.Send(protocol.IdentifyID, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, offset)
		protocol.EncodeVLQUint(o, protocol.IdentifyChunk)
	}, c.opts.AckTimeout)
	if err != nil {
		return nil, err
	}

	for {
		m, err := c.tr.Receive(c.opts.ResponseTimeout)
		if err != nil {
			return nil, err
		}
		if m.ID != protocol.IdentifyResponseID {
			continue
		}
		got, err := protocol.DecodeVLQUint(&m.Args)
		if err != nil {
			return nil, err
		}
		if got != offset {
			c.log.Debug().Uint32("want", offset).Uint32("got", got).Msg("stale identify response")
			continue
		}
		data, err := protocol.DecodeVLQBytes(&m.Args)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

// call sends command name and waits for its reply, which is either reply,
// done (when reply is empty) or error. It returns the reply's arguments.
func (c *Client) call(name, reply string, args func(protocol.OutputBuffer)) ([]byte, error) {
	if c.ids == nil {
		return nil, errors.New("not identified")
	}
	id, ok := c.ids[name]
	if !ok {
		return nil, fmt.Errorf("clock does not support %q", name)
	}
	if reply == "" {
		reply = protocol.MsgDone
	}
	replyID, ok := c.ids[reply]
	if !ok {
		return nil, fmt.Errorf("clock does not send %q", reply)
	}
	errID := c.ids[protocol.MsgError]

	c.log.Debug().Str("cmd", name).Msg("call")
	if err := c.tr.Send(id, args, c.opts.AckTimeout); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	deadline := time.Now().Add(c.opts.ResponseTimeout)
	for {
		m, err := c.tr.Receive(time.Until(deadline))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		switch m.ID {
		case errID:
			return nil, c.remoteError(name, m.Args)
		case replyID:
			if reply == protocol.MsgDone {
				cmd, err := protocol.DecodeVLQUint(&m.Args)
				if err != nil || uint16(cmd) != id {
					continue
				}
			}
			return m.Args, nil
		default:
			c.log.Debug().Str("msg", c.names[m.ID]).Msg("unsolicited")
		}
	}
}

func (c *Client) remoteError(name string, args []byte) error {
	cmd, err := protocol.DecodeVLQUint(&args)
	if err != nil {
		return fmt.Errorf("%s: malformed error response: %w", name, err)
	}
	code, err := protocol.DecodeVLQUint(&args)
	if err != nil {
		return fmt.Errorf("%s: malformed error response: %w", name, err)
	}
	if n, ok := c.names[uint16(cmd)]; ok {
		name = n
	}
	return &RemoteError{Command: name, Kind: core.KindFromCode(uint8(code)), Code: uint8(code)}
}

// Fill paints panel (0..5 for D1..D6) with an RGB565 color
func (c *Client) Fill(panel uint8, color core.RGB565) error {
	_, err := c.call(protocol.MsgFill, "", func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(panel))
		protocol.EncodeVLQUint(o, uint32(color))
	})
	return err
}

// Brightness sets the backlight duty, 0..65535
func (c *Client) Brightness(level uint16) error {
	_, err := c.call(protocol.MsgBrightness, "", func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(level))
	})
	return err
}

// Strip sets every LED to one color and stops any animation
func (c *Client) Strip(r, g, b uint8) error {
	_, err := c.call(protocol.MsgStrip, "", func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(r))
		protocol.EncodeVLQUint(o, uint32(g))
		protocol.EncodeVLQUint(o, uint32(b))
	})
	return err
}

// StripMode selects the LED animation by its index
func (c *Client) StripMode(mode uint8) error {
	_, err := c.call(protocol.MsgStripMode, "", func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(mode))
	})
	return err
}

// Time reads the clock's RTC
func (c *Client) Time() (time.Time, error) {
	args, err := c.call(protocol.MsgGetTime, protocol.MsgTime, nil)
	if err != nil {
		return time.Time{}, err
	}
	unix, err := protocol.DecodeVLQUint(&args)
	if err != nil {
		return time.Time{}, fmt.Errorf("time: %w", err)
	}
	return time.Unix(int64(unix), 0).UTC(), nil
}

// SetTime writes t to the RTC, truncated to the second
func (c *Client) SetTime(t time.Time) error {
	_, err := c.call(protocol.MsgSetTime, "", func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(t.Unix()))
	})
	return err
}

// Env reads the environmental sensor
func (c *Client) Env() (Env, error) {
	args, err := c.call(protocol.MsgGetEnv, protocol.MsgEnv, nil)
	if err != nil {
		return Env{}, err
	}
	var raw [3]int32
	for i := range raw {
		if raw[i], err = protocol.DecodeVLQInt(&args); err != nil {
			return Env{}, fmt.Errorf("env: %w", err)
		}
	}
	return Env{
		Temperature: float64(raw[0]) / 1000,
		Pressure:    float64(raw[1]) / 100000,
		Humidity:    float64(raw[2]) / 100,
	}, nil
}

// ShowTime makes the clock redraw the current time
func (c *Client) ShowTime() error {
	_, err := c.call(protocol.MsgShowTime, "", nil)
	return err
}

// Debug turns the firmware's debug text on or off
func (c *Client) Debug(on bool) error {
	var v uint32
	if on {
		v = 1
	}
	_, err := c.call(protocol.MsgDebug, "", func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, v)
	})
	return err
}

package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"lcdclock/core"
	"lcdclock/display"
	"lcdclock/host/link"
	"lcdclock/ledstrip"
)

// Clock is the subset of link.Client the commands use
type Clock interface {
	Dictionary() string
	Fill(panel uint8, color core.RGB565) error
	Brightness(level uint16) error
	Strip(r, g, b uint8) error
	StripMode(mode uint8) error
	Time() (time.Time, error)
	SetTime(t time.Time) error
	Env() (link.Env, error)
	ShowTime() error
	Debug(on bool) error
}

var _ Clock = (*link.Client)(nil)

type command struct {
	usage string
	run   func(s *session, args []string) error
}

type session struct {
	clock   Clock
	out     io.Writer
	presets map[string]core.RGB8
	now     func() time.Time
}

func newSession(c Clock, out io.Writer, extra map[string]string) (*session, error) {
	s := &session{clock: c, out: out, presets: make(map[string]core.RGB8), now: time.Now}
	for name, c := range core.Presets {
		s.presets[name] = c
	}
	for name, hex := range extra {
		c, err := parseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		s.presets[strings.ToLower(name)] = c
	}
	return s, nil
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":       {"help", cmdHelp},
		"dict":       {"dict", cmdDict},
		"fill":       {"fill <D1..D6|all> <name|0xrrggbb>", cmdFill},
		"brightness": {"brightness <0..65535|0..100%>", cmdBrightness},
		"strip":      {"strip <name|0xrrggbb> | strip <r> <g> <b>", cmdStrip},
		"mode":       {"mode <" + strings.Join(modeNames(), "|") + ">", cmdMode},
		"time":       {"time", cmdTime},
		"settime":    {"settime [now|RFC3339]", cmdSetTime},
		"env":        {"env", cmdEnv},
		"show":       {"show", cmdShow},
		"debug":      {"debug <on|off>", cmdDebug},
	}
}

func (s *session) exec(args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return cmd.run(s, args[1:])
}

func cmdHelp(s *session, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", commands[name].usage)
	}
	return nil
}

func cmdDict(s *session, _ []string) error {
	fmt.Fprint(s.out, s.clock.Dictionary())
	return nil
}

func cmdFill(s *session, args []string) error {
	if len(args) != 2 {
		return errUsage("fill")
	}
	c, err := s.parseColor(args[1])
	if err != nil {
		return err
	}
	if strings.EqualFold(args[0], "all") {
		for _, p := range display.Panels {
			if err := s.clock.Fill(uint8(p), c.RGB565()); err != nil {
				return err
			}
		}
		return nil
	}
	p, err := parsePanel(args[0])
	if err != nil {
		return err
	}
	return s.clock.Fill(p, c.RGB565())
}

func cmdBrightness(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("brightness")
	}
	level, err := parseLevel(args[0])
	if err != nil {
		return err
	}
	return s.clock.Brightness(level)
}

func cmdStrip(s *session, args []string) error {
	switch len(args) {
	case 1:
		c, err := s.parseColor(args[0])
		if err != nil {
			return err
		}
		return s.clock.Strip(c.R, c.G, c.B)
	case 3:
		var rgb [3]uint8
		for i, a := range args {
			v, err := strconv.ParseUint(a, 0, 8)
			if err != nil {
				return fmt.Errorf("channel %q: %w", a, err)
			}
			rgb[i] = uint8(v)
		}
		return s.clock.Strip(rgb[0], rgb[1], rgb[2])
	}
	return errUsage("strip")
}

func cmdMode(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("mode")
	}
	m, ok := ledstrip.ParseMode(strings.ToLower(args[0]))
	if !ok {
		return fmt.Errorf("unknown mode %q", args[0])
	}
	return s.clock.StripMode(uint8(m))
}

func cmdTime(s *session, _ []string) error {
	t, err := s.clock.Time()
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, t.Format(time.RFC3339))
	return nil
}

func cmdSetTime(s *session, args []string) error {
	t := s.now()
	if len(args) == 1 && args[0] != "now" {
		var err error
		if t, err = time.Parse(time.RFC3339, args[0]); err != nil {
			return err
		}
	} else if len(args) > 1 {
		return errUsage("settime")
	}
	return s.clock.SetTime(t)
}

func cmdEnv(s *session, _ []string) error {
	e, err := s.clock.Env()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%.2f °C  %.2f hPa  %.2f %%RH\n", e.Temperature, e.Pressure, e.Humidity)
	return nil
}

func cmdShow(s *session, _ []string) error {
	return s.clock.ShowTime()
}

func cmdDebug(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("debug")
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return s.clock.Debug(true)
	case "off":
		return s.clock.Debug(false)
	}
	return errUsage("debug")
}

func errUsage(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

func modeNames() []string {
	var names []string
	for m := ledstrip.ModeOff; ; m = m.Next() {
		names = append(names, m.String())
		if m.Next() == ledstrip.ModeOff {
			return names
		}
	}
}

// parsePanel accepts D1..D6 or 1..6 and returns the panel index
func parsePanel(s string) (uint8, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(s), "D"))
	if err != nil || n < 1 || n > display.NumPanels {
		return 0, fmt.Errorf("panel %q: want D1..D%d", s, display.NumPanels)
	}
	return uint8(n - 1), nil
}

// parseLevel accepts a raw duty or a percentage
func parseLevel(s string) (uint16, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil || v < 0 || v > 100 {
			return 0, fmt.Errorf("brightness %q: want 0..100%%", s)
		}
		return uint16(v / 100 * core.PWMMax), nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("brightness %q: %w", s, err)
	}
	return uint16(v), nil
}

func (s *session) parseColor(arg string) (core.RGB8, error) {
	if c, ok := s.presets[strings.ToLower(arg)]; ok {
		return c, nil
	}
	return parseHex(arg)
}

// parseHex accepts 0xrrggbb, rrggbb or #rrggbb. The REPL's tokenizer
// drops everything after a #, so the 0x form is the one to type there.
func parseHex(s string) (core.RGB8, error) {
	h := s
	for _, prefix := range []string{"#", "0x", "0X"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			h = rest
			break
		}
	}
	if len(h) != 6 {
		return core.RGB8{}, fmt.Errorf("color %q: want a preset name or 0xrrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return core.RGB8{}, fmt.Errorf("color %q: %w", s, err)
	}
	return core.RGB8{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

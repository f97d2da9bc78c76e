package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcdclock/core"
	"lcdclock/host/link"
	"lcdclock/ledstrip"
)

type fill struct {
	panel uint8
	color core.RGB565
}

type fakeClock struct {
	fills      []fill
	brightness uint16
	strip      core.RGB8
	mode       uint8
	set        time.Time
	shown      int
	debug      bool
}

func (f *fakeClock) Dictionary() string { return "{}" }
func (f *fakeClock) Fill(panel uint8, color core.RGB565) error {
	f.fills = append(f.fills, fill{panel, color})
	return nil
}
func (f *fakeClock) Brightness(level uint16) error { f.brightness = level; return nil }
func (f *fakeClock) Strip(r, g, b uint8) error      { f.strip = core.RGB8{R: r, G: g, B: b}; return nil }
func (f *fakeClock) StripMode(mode uint8) error     { f.mode = mode; return nil }
func (f *fakeClock) Time() (time.Time, error) {
	return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC), nil
}
func (f *fakeClock) SetTime(t time.Time) error { f.set = t; return nil }
func (f *fakeClock) Env() (link.Env, error) {
	return link.Env{Temperature: 21.5, Pressure: 1013.25, Humidity: 40}, nil
}
func (f *fakeClock) ShowTime() error { f.shown++; return nil }
func (f *fakeClock) Debug(on bool) error {
	f.debug = on
	return nil
}

func run(t *testing.T, line string, extra map[string]string) (*fakeClock, string, error) {
	t.Helper()
	clock := &fakeClock{}
	var out bytes.Buffer
	s, err := newSession(clock, &out, extra)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Unix(1_800_000_000, 0) }
	args, err := shlex.Split(line)
	require.NoError(t, err)
	err = s.exec(args)
	return clock, out.String(), err
}

func TestFillPanel(t *testing.T) {
	clock, _, err := run(t, "fill D3 red", nil)
	require.NoError(t, err)
	assert.Equal(t, []fill{{2, core.Red.RGB565()}}, clock.fills)
}

func TestFillAll(t *testing.T) {
	clock, _, err := run(t, "fill all 0x0000ff", nil)
	require.NoError(t, err)
	require.Len(t, clock.fills, 6)
	for i, f := range clock.fills {
		assert.Equal(t, uint8(i), f.panel)
		assert.Equal(t, core.Blue.RGB565(), f.color)
	}
}

func TestFillRejects(t *testing.T) {
	for _, line := range []string{"fill D7 red", "fill D0 red", "fill D1 mauve", "fill D1", "fill D1 0x12345", "fill D1 12345g"} {
		_, _, err := run(t, line, nil)
		assert.Error(t, err, line)
	}
}

func TestParseHexForms(t *testing.T) {
	want := core.RGB8{R: 0x12, G: 0xab, B: 0xef}
	for _, s := range []string{"0x12abef", "0X12ABEF", "12abef", "#12abef"} {
		c, err := parseHex(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, c, s)
	}
}

// shlex treats # as a comment, so hex colors typed at the prompt use 0x
func TestHexColorSurvivesTokenizer(t *testing.T) {
	args, err := shlex.Split("fill D2 0xff0000")
	require.NoError(t, err)
	require.Equal(t, []string{"fill", "D2", "0xff0000"}, args)

	clock, _, err := run(t, "fill D2 0xff0000", nil)
	require.NoError(t, err)
	assert.Equal(t, []fill{{1, core.Red.RGB565()}}, clock.fills)

	args, err = shlex.Split("fill D2 #ff0000")
	require.NoError(t, err)
	assert.Equal(t, []string{"fill", "D2"}, args)
}

func TestConfigPreset(t *testing.T) {
	clock, _, err := run(t, `strip "Warm White"`, map[string]string{"Warm White": "#ffd080"})
	require.NoError(t, err)
	assert.Equal(t, core.RGB8{R: 0xff, G: 0xd0, B: 0x80}, clock.strip)

	_, err = newSession(&fakeClock{}, &bytes.Buffer{}, map[string]string{"bad": "orangeish"})
	assert.Error(t, err)
}

func TestStripChannels(t *testing.T) {
	clock, _, err := run(t, "strip 1 0x20 255", nil)
	require.NoError(t, err)
	assert.Equal(t, core.RGB8{R: 1, G: 0x20, B: 255}, clock.strip)

	_, _, err = run(t, "strip 1 2 256", nil)
	assert.Error(t, err)
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		line string
		want uint16
	}{
		{"brightness 0", 0},
		{"brightness 0xffff", 0xffff},
		{"brightness 100%", 0xffff},
		{"brightness 50%", 0x7fff},
	}
	for _, tt := range tests {
		clock, _, err := run(t, tt.line, nil)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, clock.brightness, tt.line)
	}
	_, _, err := run(t, "brightness 101%", nil)
	assert.Error(t, err)
}

func TestMode(t *testing.T) {
	clock, _, err := run(t, "mode Cyan", nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(ledstrip.ModeCyan), clock.mode)

	_, _, err = run(t, "mode strobe", nil)
	assert.Error(t, err)
}

func TestSetTime(t *testing.T) {
	clock, _, err := run(t, "settime", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1_800_000_000), clock.set.Unix())

	clock, _, err = run(t, "settime 2026-10-18T12:00:00Z", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), clock.set)

	_, _, err = run(t, "settime yesterday", nil)
	assert.Error(t, err)
}

func TestReadouts(t *testing.T) {
	_, out, err := run(t, "time", nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18T09:30:00Z\n", out)

	_, out, err = run(t, "env", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "21.50 °C")
	assert.Contains(t, out, "1013.25 hPa")
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := run(t, "explode", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	_, out, err := run(t, "help", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "fill <D1..D6|all> <color>")
}

func TestDebugSwitch(t *testing.T) {
	clock, _, err := run(t, "debug on", nil)
	require.NoError(t, err)
	assert.True(t, clock.debug)

	_, _, err = run(t, "debug maybe", nil)
	assert.Error(t, err)
}

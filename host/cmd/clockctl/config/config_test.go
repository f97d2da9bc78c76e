package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clockctl.yaml")
	yml := "device: /dev/ttyACM3\ntimeouts:\n  ack_ms: 500\npresets:\n  amber: \"#ffbf00\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM3", c.Device)
	assert.Equal(t, 500*time.Millisecond, c.Timeouts.Ack())
	assert.Equal(t, time.Second, c.Timeouts.Response(), "unset keys keep their defaults")
	assert.Equal(t, "#ffbf00", c.Presets["amber"])
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := Default()
	want.LogLevel = "debug"
	want.Presets = map[string]string{"teal": "#008080"}

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

package curvefile

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	s, err := ParseConfig([]byte(`
[lut]
samples = 64

[group]
chain_slack = 0

[edit]
snap_radius = 2.5

[log]
level = "debug"
`))
	require.NoError(t, err)

	def := DefaultSettings()
	assert.Equal(t, 64, s.Network.LUTSamples)
	assert.Equal(t, 0, s.Network.ChainSlack)
	assert.Equal(t, 2.5, s.Network.SnapRadius)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, def.Network.LUTTolerance, s.Network.LUTTolerance, "absent keys keep defaults")
	assert.Equal(t, def.Network.StandaloneSamples, s.Network.StandaloneSamples)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig([]byte("[lut]\nsamples = \"many\"\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("[log]\nlevel = \"loud\"\n"))
	assert.ErrorContains(t, err, "log.level")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadConfig(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	s, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[group]\nstandalone_samples = 16\n"), 0o644))
	s, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, s.Network.StandaloneSamples)

	require.NoError(t, os.WriteFile(path, []byte("[group\n"), 0o644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, path)
}

func TestFormatConfigRoundTrip(t *testing.T) {
	want := DefaultSettings()
	want.Network.ChainSlack = 1
	want.LogLevel = slog.LevelWarn

	data, err := FormatConfig(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[lut]")

	got, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

package curvefile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ha1tch/curve-toolkit/pkg/curvenet"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the name of the per-user configuration file.
const ConfigFileName = ".curvenet.toml"

// Settings is the resolved configuration: the store's numeric policy and
// the log level.
type Settings struct {
	Network  curvenet.Config
	LogLevel slog.Level
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{Network: curvenet.DefaultConfig(), LogLevel: slog.LevelInfo}
}

// fileConfig mirrors the TOML layout. It is pre-filled with defaults
// before decoding so absent keys keep them.
type fileConfig struct {
	LUT struct {
		Samples        int     `toml:"samples"`
		Tolerance      float64 `toml:"tolerance"`
		ArclenAccuracy float64 `toml:"arclen_accuracy"`
	} `toml:"lut"`
	Group struct {
		StandaloneSamples int     `toml:"standalone_samples"`
		QueryEpsilon      float64 `toml:"query_epsilon"`
		ChainSlack        int     `toml:"chain_slack"`
	} `toml:"group"`
	Edit struct {
		SnapRadius float64 `toml:"snap_radius"`
	} `toml:"edit"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func toFile(s Settings) fileConfig {
	var fc fileConfig
	c := s.Network
	fc.LUT.Samples = c.LUTSamples
	fc.LUT.Tolerance = c.LUTTolerance
	fc.LUT.ArclenAccuracy = c.ArclenAccuracy
	fc.Group.StandaloneSamples = c.StandaloneSamples
	fc.Group.QueryEpsilon = c.QueryEpsilon
	fc.Group.ChainSlack = c.ChainSlack
	fc.Edit.SnapRadius = c.SnapRadius
	fc.Log.Level = s.LogLevel.String()
	return fc
}

func (fc fileConfig) settings() (Settings, error) {
	s := Settings{Network: curvenet.Config{
		LUTSamples:        fc.LUT.Samples,
		LUTTolerance:      fc.LUT.Tolerance,
		ArclenAccuracy:    fc.LUT.ArclenAccuracy,
		StandaloneSamples: fc.Group.StandaloneSamples,
		QueryEpsilon:      fc.Group.QueryEpsilon,
		ChainSlack:        fc.Group.ChainSlack,
		SnapRadius:        fc.Edit.SnapRadius,
	}}
	if err := s.LogLevel.UnmarshalText([]byte(fc.Log.Level)); err != nil {
		return s, fmt.Errorf("log.level: %w", err)
	}
	return s, nil
}

// DefaultConfigPath returns ~/.curvenet.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigFileName)
}

// ParseConfig decodes TOML configuration. Keys that are absent keep their
// defaults.
func ParseConfig(data []byte) (Settings, error) {
	fc := toFile(DefaultSettings())
	if err := toml.Unmarshal(data, &fc); err != nil {
		return DefaultSettings(), err
	}
	return fc.settings()
}

// LoadConfig reads the configuration file at path. A missing file yields
// the defaults.
func LoadConfig(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), err
	}
	s, err := ParseConfig(data)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// FormatConfig encodes settings as TOML.
func FormatConfig(s Settings) ([]byte, error) {
	return toml.Marshal(toFile(s))
}

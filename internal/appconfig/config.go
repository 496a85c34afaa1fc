package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/echowave/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	Waveform      WaveformConfig `mapstructure:"waveform" yaml:"waveform"`
	Echo          EchoConfig     `mapstructure:"echo" yaml:"echo"`
	Log           LogConfig      `mapstructure:"log" yaml:"log"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// WaveformConfig controls sample extraction and rendering.
type WaveformConfig struct {
	FieldPath  string `mapstructure:"field_path" yaml:"field_path"`
	MaxPoints  int    `mapstructure:"max_points" yaml:"max_points"`
	ThrottleMs int    `mapstructure:"throttle_ms" yaml:"throttle_ms"`
}

// EchoConfig controls how echo and list subprocesses are invoked and
// how their output is decoded.
type EchoConfig struct {
	Binary   string            `mapstructure:"binary" yaml:"binary"`
	EchoArgs []string          `mapstructure:"echo_args" yaml:"echo_args"`
	ListArgs []string          `mapstructure:"list_args" yaml:"list_args"`
	Env      map[string]string `mapstructure:"env" yaml:"env"`
	Encoding string            `mapstructure:"encoding" yaml:"encoding"`
}

// LogConfig controls the per-channel scrollback buffer.
type LogConfig struct {
	MaxLines int `mapstructure:"max_lines" yaml:"max_lines"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Waveform: WaveformConfig{
			FieldPath:  "",
			MaxPoints:  schema.DefaultMaxPoints,
			ThrottleMs: schema.DefaultThrottleMs,
		},
		Echo: EchoConfig{
			Binary:   "ros2",
			EchoArgs: []string{"topic", "echo"},
			ListArgs: []string{"topic", "list", "-t"},
			Env:      map[string]string{},
			Encoding: "auto",
		},
		Log: LogConfig{
			MaxLines: schema.DefaultLogMaxLines,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".echowave", "config.yaml"), nil
}

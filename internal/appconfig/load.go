package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/echowave/internal/textdec"
	"pkt.systems/echowave/schema"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("waveform.field_path", cfg.Waveform.FieldPath)
	v.SetDefault("waveform.max_points", cfg.Waveform.MaxPoints)
	v.SetDefault("waveform.throttle_ms", cfg.Waveform.ThrottleMs)
	v.SetDefault("echo.binary", cfg.Echo.Binary)
	v.SetDefault("echo.echo_args", cfg.Echo.EchoArgs)
	v.SetDefault("echo.list_args", cfg.Echo.ListArgs)
	v.SetDefault("echo.env", cfg.Echo.Env)
	v.SetDefault("echo.encoding", cfg.Echo.Encoding)
	v.SetDefault("log.max_lines", cfg.Log.MaxLines)

	// A missing config file means defaults; anything else is fatal.
	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Echo.Binary == "" {
		return fmt.Errorf("echo.binary must not be empty")
	}
	if _, err := textdec.ParseEncoding(cfg.Echo.Encoding); err != nil {
		return fmt.Errorf("echo.encoding: %w", err)
	}
	if _, err := schema.NormalizeWaveformConfig(schema.WaveformConfig{
		FieldPath:  cfg.Waveform.FieldPath,
		MaxPoints:  cfg.Waveform.MaxPoints,
		ThrottleMs: cfg.Waveform.ThrottleMs,
	}); err != nil {
		return err
	}
	if cfg.Log.MaxLines < 0 {
		return fmt.Errorf("log.max_lines must not be negative")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Echo.Binary = expandEnv(cfg.Echo.Binary)
	for i, arg := range cfg.Echo.EchoArgs {
		cfg.Echo.EchoArgs[i] = expandEnv(arg)
	}
	for i, arg := range cfg.Echo.ListArgs {
		cfg.Echo.ListArgs[i] = expandEnv(arg)
	}
	for key, value := range cfg.Echo.Env {
		cfg.Echo.Env[key] = expandEnv(value)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

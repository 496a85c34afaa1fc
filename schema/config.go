package schema

import "errors"

// WaveformConfig controls sample extraction and rendering. The core
// treats each instance as an immutable snapshot between updates.
type WaveformConfig struct {
	// FieldPath selects the record field to plot. Empty means auto
	// selection: prefer "data", otherwise the first numeric leaf.
	FieldPath string
	// MaxPoints bounds each channel's sample buffer.
	MaxPoints int
	// ThrottleMs is the minimum interval between redraws.
	ThrottleMs int
}

// DefaultMaxPoints is the default per-channel sample capacity.
const DefaultMaxPoints = 2000

// MinMaxPoints is the smallest accepted sample capacity.
const MinMaxPoints = 100

// DefaultThrottleMs is the default redraw throttle interval.
const DefaultThrottleMs = 100

// DefaultLogMaxLines is the default per-channel scrollback limit.
const DefaultLogMaxLines = 5000

// NormalizeWaveformConfig applies defaults and validates the config.
func NormalizeWaveformConfig(cfg WaveformConfig) (WaveformConfig, error) {
	if cfg.MaxPoints == 0 {
		cfg.MaxPoints = DefaultMaxPoints
	}
	if cfg.MaxPoints < MinMaxPoints {
		return WaveformConfig{}, errors.New("waveform max points must be at least 100")
	}
	if cfg.ThrottleMs < 0 {
		return WaveformConfig{}, errors.New("waveform throttle must not be negative")
	}
	return cfg, nil
}

// ServiceConfig defines defaults and limits for the core service.
type ServiceConfig struct {
	Waveform    WaveformConfig
	LogMaxLines int
}

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	waveform, err := NormalizeWaveformConfig(cfg.Waveform)
	if err != nil {
		return ServiceConfig{}, err
	}
	cfg.Waveform = waveform
	if cfg.LogMaxLines <= 0 {
		cfg.LogMaxLines = DefaultLogMaxLines
	}
	return cfg, nil
}

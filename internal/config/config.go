// Package config loads homados settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/leandrodaf/homados/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the file representation of the engine options.
type Config struct {
	ClientName  string `yaml:"client_name"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	EventBuffer int    `yaml:"event_buffer"`
	Audio       Audio  `yaml:"audio"`
	Server      Server `yaml:"server"`
}

// Audio holds synthesis and output settings.
type Audio struct {
	SampleRate      int           `yaml:"sample_rate"`
	BufferSize      time.Duration `yaml:"buffer_size"`
	PreviewDuration time.Duration `yaml:"preview_duration"`
	PreviewDamping  float64       `yaml:"preview_damping"`
	PollInterval    time.Duration `yaml:"poll_interval"`
}

// Server holds settings of the HTTP surface.
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ClientName:  "homados",
		LogLevel:    "info",
		EventBuffer: 256,
		Audio: Audio{
			SampleRate:      44100,
			BufferSize:      100 * time.Millisecond,
			PreviewDuration: 200 * time.Millisecond,
			PreviewDamping:  0.3,
			PollInterval:    10 * time.Millisecond,
		},
		Server: Server{Addr: "127.0.0.1:8765"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, ok := contracts.ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.EventBuffer < 0 {
		return fmt.Errorf("%w: event_buffer must not be negative", ErrInvalidConfig)
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("%w: audio.sample_rate must not be negative", ErrInvalidConfig)
	}
	if c.Audio.PreviewDamping < 0 || c.Audio.PreviewDamping > 1 {
		return fmt.Errorf("%w: audio.preview_damping must be within [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// Options converts the configuration into engine options.
func (c Config) Options() []contracts.Option {
	level, _ := contracts.ParseLogLevel(c.LogLevel)
	opts := []contracts.Option{
		contracts.WithLogLevel(level),
		contracts.WithBackendConfig(contracts.BackendConfig{ClientName: c.ClientName}),
		contracts.WithEventBuffer(c.EventBuffer),
		contracts.WithAudioConfig(contracts.AudioConfig{
			SampleRate:      c.Audio.SampleRate,
			BufferSize:      c.Audio.BufferSize,
			PreviewDuration: c.Audio.PreviewDuration,
			PreviewDamping:  c.Audio.PreviewDamping,
			PollInterval:    c.Audio.PollInterval,
		}),
	}
	if c.LogFile != "" {
		opts = append(opts, contracts.WithLogFile(c.LogFile))
	}
	return opts
}

// Package config loads the daemon configuration from an optional YAML file
// with CONTINUUM_* environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/continuum-ml/continuum/internal/engine"
)

// Config is the full daemon configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Learning LearningConfig `mapstructure:"learning"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LearningConfig holds the engine-wide learning defaults applied to models
// registered without an explicit config.
type LearningConfig struct {
	MinSamples     int           `mapstructure:"min_samples"`
	Interval       time.Duration `mapstructure:"interval"`
	MaxQueueSize   int           `mapstructure:"max_queue_size"`
	DriftDetection bool          `mapstructure:"drift_detection"`
	DriftThreshold float64       `mapstructure:"drift_threshold"`
	Tick           time.Duration `mapstructure:"tick"`
}

// EngineDefaults converts the learning section into the engine's config type.
func (c LearningConfig) EngineDefaults() engine.LearningConfig {
	return engine.LearningConfig{
		MinSamples:     c.MinSamples,
		Interval:       c.Interval,
		MaxQueueSize:   c.MaxQueueSize,
		DriftDetection: c.DriftDetection,
		DriftThreshold: c.DriftThreshold,
	}
}

// Addr returns the host:port pair for the HTTP listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")

	defaults := engine.DefaultLearningConfig()
	v.SetDefault("learning.min_samples", defaults.MinSamples)
	v.SetDefault("learning.interval", defaults.Interval)
	v.SetDefault("learning.max_queue_size", defaults.MaxQueueSize)
	v.SetDefault("learning.drift_detection", defaults.DriftDetection)
	v.SetDefault("learning.drift_threshold", defaults.DriftThreshold)
	v.SetDefault("learning.tick", time.Second)
}

// Load reads configuration from the given YAML file path. An empty path or a
// missing file falls back to defaults and environment overrides; a present
// but malformed file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CONTINUUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %q: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Learning.EngineDefaults().Validate(); err != nil {
		return nil, fmt.Errorf("learning config: %w", err)
	}
	if cfg.Learning.Tick <= 0 {
		return nil, fmt.Errorf("learning config: tick must be positive, got %s", cfg.Learning.Tick)
	}
	return &cfg, nil
}

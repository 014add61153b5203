// Package config loads process-wide defaults for the preview runtime from
// the environment. Everything here can be overridden per renderer instance;
// there are no config files.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all preview runtime configuration.
type Config struct {
	Render  RenderConfig
	Budget  BudgetConfig
	Logging LogConfig
}

// RenderConfig holds drawing surface and scheduling configuration.
type RenderConfig struct {
	// MaxDimension caps the longest side of the physical render buffer.
	MaxDimension int `envconfig:"PREVIEW_MAX_DIMENSION" default:"900"`
	// FPS is the target cadence of the animation loop scheduler.
	FPS int `envconfig:"PREVIEW_FPS" default:"60"`
	// TotalFrames is the default script-visible loop length.
	TotalFrames int `envconfig:"PREVIEW_TOTAL_FRAMES" default:"120"`
}

// BudgetConfig holds execution budget ceilings and the exceeded response.
type BudgetConfig struct {
	MaxFrames int    `envconfig:"PREVIEW_MAX_FRAMES" default:"1800"`
	MaxTimeMs int    `envconfig:"PREVIEW_MAX_TIME_MS" default:"300000"`
	Stride    int    `envconfig:"PREVIEW_DEGRADE_STRIDE" default:"2"`
	Behavior  string `envconfig:"PREVIEW_BUDGET_BEHAVIOR" default:"stop"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			MaxDimension: 900,
			FPS:          60,
			TotalFrames:  120,
		},
		Budget: BudgetConfig{
			MaxFrames: 1800,
			MaxTimeMs: 300000,
			Stride:    2,
			Behavior:  "stop",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

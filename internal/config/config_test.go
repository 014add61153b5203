package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 900, cfg.Render.MaxDimension)
	assert.Equal(t, 60, cfg.Render.FPS)
	assert.Equal(t, 120, cfg.Render.TotalFrames)

	assert.Equal(t, 1800, cfg.Budget.MaxFrames)
	assert.Equal(t, 300000, cfg.Budget.MaxTimeMs)
	assert.Equal(t, 2, cfg.Budget.Stride)
	assert.Equal(t, "stop", cfg.Budget.Behavior)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	os.Setenv("PREVIEW_MAX_DIMENSION", "640")
	os.Setenv("PREVIEW_MAX_FRAMES", "300")
	os.Setenv("PREVIEW_BUDGET_BEHAVIOR", "degrade")
	defer func() {
		os.Unsetenv("PREVIEW_MAX_DIMENSION")
		os.Unsetenv("PREVIEW_MAX_FRAMES")
		os.Unsetenv("PREVIEW_BUDGET_BEHAVIOR")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Render.MaxDimension)
	assert.Equal(t, 300, cfg.Budget.MaxFrames)
	assert.Equal(t, "degrade", cfg.Budget.Behavior)

	// Untouched keys keep their defaults.
	assert.Equal(t, 60, cfg.Render.FPS)
	assert.Equal(t, 2, cfg.Budget.Stride)
}

func TestLoadOrDefaultNeverNil(t *testing.T) {
	assert.NotNil(t, LoadOrDefault())
}

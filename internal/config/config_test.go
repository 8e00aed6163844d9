package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Learning.MinSamples)
	assert.Equal(t, 60*time.Second, cfg.Learning.Interval)
	assert.Equal(t, 10000, cfg.Learning.MaxQueueSize)
	assert.True(t, cfg.Learning.DriftDetection)
	assert.Equal(t, time.Second, cfg.Learning.Tick)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Learning.MinSamples)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
log:
  level: debug
learning:
  min_samples: 10
  interval: 10s
  drift_threshold: 0.1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Learning.MinSamples)
	assert.Equal(t, 10*time.Second, cfg.Learning.Interval)
	assert.Equal(t, 0.1, cfg.Learning.DriftThreshold)
	// Keys the file omits keep their defaults.
	assert.Equal(t, 10000, cfg.Learning.MaxQueueSize)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLearningSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
learning:
  min_samples: 1
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CONTINUUM_SERVER_PORT", "7777")
	t.Setenv("CONTINUUM_LEARNING_MIN_SAMPLES", "25")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Learning.MinSamples)
}

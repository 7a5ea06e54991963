package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Hz)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, 1, cfg.SnapshotScale)
	assert.False(t, cfg.Headless)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("LINPHASE_HEADLESS", "true")
	t.Setenv("LINPHASE_TICKS", "120")
	t.Setenv("LINPHASE_HTTP_ADDR", "127.0.0.1:8081")
	t.Setenv("LINPHASE_STATE_FILE", "/tmp/state.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Headless)
	assert.Equal(t, uint64(120), cfg.Ticks)
	assert.Equal(t, "127.0.0.1:8081", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/state.json", cfg.StateFile)
}

func TestLoadRejectsBadValue(t *testing.T) {
	t.Setenv("LINPHASE_HZ", "fast")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Hz: 60, Width: 800, Height: 600, SnapshotScale: 1}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Hz = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.SnapshotScale = 0
	assert.Error(t, bad.Validate())
}

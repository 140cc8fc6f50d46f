package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, watch, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.False(t, watch)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightlab.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \"127.0.0.1:9000\"\n"), 0o644))

	cfg, watch, err := loadConfig(path)
	require.NoError(t, err)
	assert.True(t, watch)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightlab.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 1\n"), 0o644))

	_, _, err := loadConfig(path)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestWriteConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "lightlab.toml")
	require.NoError(t, run([]string{"-write-config", "-config", path}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Server.Addr, cfg.Server.Addr)
}

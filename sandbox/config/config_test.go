package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.Notices.ErrorTimeout.Duration)
	assert.Equal(t, float32(2), cfg.Objects.SpawnRadius)
	assert.Equal(t, float32(5), cfg.Objects.MaxModelDimension)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightlab.toml")
	writeFile(t, path, `
[environment]
preset = "forest"
exposure = 1.5

[environment.files]
forest = "forest.hdr"

[notices]
error_timeout = "2s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "forest", cfg.Environment.Preset)
	assert.Equal(t, float32(1.5), cfg.Environment.Exposure)
	assert.Equal(t, 2*time.Second, cfg.Notices.ErrorTimeout.Duration)
	assert.Equal(t, "forest.hdr", cfg.EnvironmentFile(environment.PresetForest))
	assert.Empty(t, cfg.EnvironmentFile(environment.PresetCity))
	assert.Equal(t, "aces_filmic", cfg.Environment.ToneMapping)
	assert.Equal(t, 1280, cfg.Window.Width)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightlab.toml")
	writeFile(t, path, "[renderer]\nshadows = true\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Environment.Exposure = 9
	cfg.Environment.ToneMapping = "filmic"
	cfg.Renderer.ShadowMode = "vsm"
	cfg.Environment.Files = map[string]string{"none": "x.hdr"}
	cfg.Camera.Near = 600
	cfg.Camera.Elevation = 90

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{"exposure", "tone_mapping", "shadow_mode", "environment.files", "camera.near", "camera.elevation"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lightlab.toml")
	cfg := Default()
	cfg.Environment.Preset = "night"
	cfg.Notices.ErrorTimeout = Duration{1500 * time.Millisecond}
	cfg.Camera.Target = [3]float32{0, 1.5, 0}

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "night", got.Environment.Preset)
	assert.Equal(t, 1500*time.Millisecond, got.Notices.ErrorTimeout.Duration)
	assert.Equal(t, [3]float32{0, 1.5, 0}, got.Camera.Target)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightlab.toml")
	writeFile(t, path, "[environment]\nexposure = 1.0\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, func(c *Config) { changes <- c }))

	writeFile(t, path, "[environment]\nexposure = 2.5\n")

	select {
	case cfg := <-changes:
		assert.Equal(t, float32(2.5), cfg.Environment.Exposure)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatchSkipsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightlab.toml")
	writeFile(t, path, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, func(c *Config) { changes <- c }))

	writeFile(t, path, "[environment]\nexposure = 40.0\n")

	select {
	case <-changes:
		t.Fatal("invalid config was delivered")
	case <-time.After(500 * time.Millisecond):
	}
}

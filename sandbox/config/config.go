// Package config loads, validates and watches the sandbox TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

// ErrInvalid wraps every validation and decoding failure.
var ErrInvalid = errors.New("invalid config")

// MaxExposure is the largest accepted exposure.
const MaxExposure float32 = 4

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the full sandbox configuration.
type Config struct {
	Server      Server      `toml:"server"`
	Window      Window      `toml:"window"`
	Camera      Camera      `toml:"camera"`
	Renderer    Renderer    `toml:"renderer"`
	Environment Environment `toml:"environment"`
	Objects     Objects     `toml:"objects"`
	Notices     Notices     `toml:"notices"`
	Log         Log         `toml:"log"`
	Snapshot    Snapshot    `toml:"snapshot"`
}

// Server configures the panel HTTP server.
type Server struct {
	// Addr is the listen address of the panel server.
	Addr string `toml:"addr"`
}

// Window configures the render window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Camera sets the starting view. Angles are in degrees.
type Camera struct {
	Fov       float32 `toml:"fov"`
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`
	Distance  float32 `toml:"distance"`
	Azimuth   float32 `toml:"azimuth"`
	Elevation float32 `toml:"elevation"`
	// Target is the orbit centre; the F key returns to it.
	Target [3]float32 `toml:"target"`
}

// Renderer configures the renderer at startup.
type Renderer struct {
	// ShadowMode is one of off, basic, pcf, pcf_soft.
	ShadowMode    string  `toml:"shadow_mode"`
	MSAA          bool    `toml:"msaa"`
	VSync         bool    `toml:"vsync"`
	FrameLimit    float64 `toml:"frame_limit"`
	ForceSoftware bool    `toml:"force_software"`
	Profiling     bool    `toml:"profiling"`
}

// Environment holds the initial environment settings. Preset, ToneMapping and Exposure are
// re-applied when the file changes while the sandbox runs.
type Environment struct {
	Preset      string  `toml:"preset"`
	ToneMapping string  `toml:"tone_mapping"`
	Exposure    float32 `toml:"exposure"`
	// AssetsDir is the directory relative HDR paths resolve against.
	AssetsDir string `toml:"assets_dir"`
	// Files maps preset names to HDR files. Presets without a file use a procedural sky.
	Files map[string]string `toml:"files"`
}

// Objects configures object placement.
type Objects struct {
	// SpawnRadius bounds the random x/z position of new primitives.
	SpawnRadius float32 `toml:"spawn_radius"`
	// MaxModelDimension is the largest extent an imported model keeps before being scaled down.
	MaxModelDimension float32 `toml:"max_model_dimension"`
}

// Notices configures transient panel notices.
type Notices struct {
	// ErrorTimeout is how long an error notice stays before it is dismissed.
	ErrorTimeout Duration `toml:"error_timeout"`
}

// Log configures the shared logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Snapshot configures scene snapshot files.
type Snapshot struct {
	// Path is the file written by the save action and read by the load action.
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{Addr: "127.0.0.1:8765"},
		Window: Window{Title: "oxy lightlab", Width: 1280, Height: 720},
		Camera: Camera{Fov: 50, Near: 0.1, Far: 500, Distance: 8, Azimuth: 45, Elevation: 30},
		Renderer: Renderer{
			ShadowMode: renderer.ShadowModePCFSoft.String(),
			MSAA:       true,
			VSync:      true,
		},
		Environment: Environment{
			Preset:      string(environment.PresetStudio),
			ToneMapping: renderer.ToneMappingACESFilmic.String(),
			Exposure:    1,
			AssetsDir:   "assets",
			Files:       map[string]string{},
		},
		Objects: Objects{SpawnRadius: 2, MaxModelDimension: 5},
		Notices: Notices{ErrorTimeout: Duration{5 * time.Second}},
		Log:     Log{Level: "info"},
		Snapshot: Snapshot{
			Path: "lightlab-scene.yaml",
		},
	}
}

// Load reads the file at path over the defaults, so absent keys keep their default values.
// Unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - *Config: the loaded configuration
//   - error: an fs.ErrNotExist wrapping error for a missing file, or ErrInvalid
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
//
// Parameters:
//   - path: the TOML file
//   - cfg: the configuration to write
//
// Returns:
//   - error: error if encoding or writing fails
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks every field and reports all problems at once.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalid
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Addr != "", "server.addr is empty")
	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d is not positive", c.Window.Width, c.Window.Height)
	check(c.Camera.Fov > 0 && c.Camera.Fov < 180, "camera.fov %v is outside (0, 180)", c.Camera.Fov)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera.near %v must be positive and below camera.far %v", c.Camera.Near, c.Camera.Far)
	check(c.Camera.Distance > 0, "camera.distance %v is not positive", c.Camera.Distance)
	check(c.Camera.Elevation > -90 && c.Camera.Elevation < 90, "camera.elevation %v is outside (-90, 90)", c.Camera.Elevation)
	if _, err := renderer.ParseShadowMode(c.Renderer.ShadowMode); err != nil {
		errs = append(errs, fmt.Errorf("renderer.shadow_mode: %w", err))
	}
	check(c.Renderer.FrameLimit >= 0, "renderer.frame_limit %v is negative", c.Renderer.FrameLimit)
	if _, err := environment.ParsePreset(c.Environment.Preset); err != nil {
		errs = append(errs, fmt.Errorf("environment.preset: %w", err))
	}
	if _, err := renderer.ParseToneMapping(c.Environment.ToneMapping); err != nil {
		errs = append(errs, fmt.Errorf("environment.tone_mapping: %w", err))
	}
	check(c.Environment.Exposure >= 0 && c.Environment.Exposure <= MaxExposure,
		"environment.exposure %v is outside [0, %v]", c.Environment.Exposure, MaxExposure)
	for name := range c.Environment.Files {
		if _, err := environment.ParsePreset(name); err != nil || environment.Preset(name) == environment.PresetNone {
			errs = append(errs, fmt.Errorf("environment.files: %q is not a loadable preset", name))
		}
	}
	check(c.Objects.SpawnRadius >= 0, "objects.spawn_radius %v is negative", c.Objects.SpawnRadius)
	check(c.Objects.MaxModelDimension > 0, "objects.max_model_dimension %v is not positive", c.Objects.MaxModelDimension)
	check(c.Notices.ErrorTimeout.Duration > 0, "notices.error_timeout %v is not positive", c.Notices.ErrorTimeout)
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	check(c.Snapshot.Path != "", "snapshot.path is empty")

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// EnvironmentFile returns the HDR file configured for preset, or "" for a procedural sky.
func (c *Config) EnvironmentFile(preset environment.Preset) string {
	return c.Environment.Files[string(preset)]
}

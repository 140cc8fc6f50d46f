package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"go.uber.org/zap"
)

const environmentNotice = "environment"

// EnvironmentState is the editable environment configuration.
type EnvironmentState struct {
	Preset      string  `json:"preset" yaml:"preset"`
	ToneMapping string  `json:"toneMapping" yaml:"tone_mapping"`
	Exposure    float32 `json:"exposure" yaml:"exposure"`
}

// EnvironmentView is the view-state of the environment panel.
type EnvironmentView struct {
	EnvironmentState
	Presets      []string `json:"presets"`
	ToneMappings []string `json:"toneMappings"`
	MaxExposure  float32  `json:"maxExposure"`
	Loading      bool     `json:"loading"`
}

// EnvironmentController applies the environment preset, tone mapping and exposure.
//
// Preset maps load in the background and are cached per preset. Each refresh that starts a
// load bumps a generation and cancels the previous load, and a completion from an older
// generation is dropped, so the last selection always wins.
type EnvironmentController struct {
	target    EnvironmentTarget
	tone      ToneMapper
	container panel.Container
	notices   *panel.Notifier
	loader    EnvironmentLoader

	ctx          context.Context
	post         PostFunc
	files        func(environment.Preset) string
	sched        panel.Scheduler
	errorTimeout time.Duration

	state      EnvironmentState
	cache      map[environment.Preset]*environment.Map
	requested  environment.Preset
	generation uint64
	cancel     context.CancelFunc
	loading    bool
}

// NewEnvironmentController creates an EnvironmentController that renders into the
// environment panel and applies the initial state.
//
// Parameters:
//   - target: receives the background and environment maps
//   - tone: receives tone mapping and exposure
//   - host: resolves the environment panel
//   - ldr: loads environment maps
//   - options: controller options
//
// Returns:
//   - *EnvironmentController: the controller
//   - error: panel.ErrMissingContainer if the host has no environment panel
func NewEnvironmentController(target EnvironmentTarget, tone ToneMapper, host panel.Host, ldr EnvironmentLoader, options ...EnvironmentControllerOption) (*EnvironmentController, error) {
	if target == nil || tone == nil || host == nil || ldr == nil {
		panic("controller: NewEnvironmentController requires a target, a tone mapper, a host and a loader")
	}
	container, err := host.Container(panel.EnvironmentContainer)
	if err != nil {
		return nil, fmt.Errorf("environment controller: %w", err)
	}
	c := &EnvironmentController{
		target:       target,
		tone:         tone,
		container:    container,
		loader:       ldr,
		ctx:          context.Background(),
		post:         runInline,
		files:        func(environment.Preset) string { return "" },
		sched:        panel.RealScheduler,
		errorTimeout: 5 * time.Second,
		state: EnvironmentState{
			Preset:      string(environment.PresetNone),
			ToneMapping: renderer.ToneMappingACESFilmic.String(),
			Exposure:    1,
		},
		cache: make(map[environment.Preset]*environment.Map),
	}
	for _, opt := range options {
		opt(c)
	}
	c.notices = panel.NewNotifier(container, c.sched, c.errorTimeout)
	c.refresh()
	return c, nil
}

// State returns the current configuration.
func (c *EnvironmentController) State() EnvironmentState {
	return c.state
}

// SetPreset selects a preset.
//
// Returns:
//   - environment.Preset: the previous preset
func (c *EnvironmentController) SetPreset(p environment.Preset) environment.Preset {
	prev := environment.Preset(c.state.Preset)
	c.state.Preset = string(p)
	c.refresh()
	return prev
}

// SetToneMapping selects the tone mapping operator.
//
// Returns:
//   - renderer.ToneMapping: the previous operator
func (c *EnvironmentController) SetToneMapping(tm renderer.ToneMapping) renderer.ToneMapping {
	prev, _ := renderer.ParseToneMapping(c.state.ToneMapping)
	c.state.ToneMapping = tm.String()
	c.refresh()
	return prev
}

// SetExposure sets the exposure, clamped to [0, intent.MaxExposure].
//
// Returns:
//   - float32: the previous exposure
func (c *EnvironmentController) SetExposure(v float32) float32 {
	prev := c.state.Exposure
	c.state.Exposure = common.Clamp(v, 0, intent.MaxExposure)
	c.refresh()
	return prev
}

// Close cancels an in-flight load.
func (c *EnvironmentController) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// refresh applies tone mapping and exposure, then brings the maps in line with the preset:
// none clears them, a cached preset applies at once and anything else starts a load.
func (c *EnvironmentController) refresh() {
	defer c.render()

	tm, err := renderer.ParseToneMapping(c.state.ToneMapping)
	if err != nil {
		panic(fmt.Sprintf("controller: %v", err))
	}
	c.tone.SetToneMapping(tm)
	c.tone.SetExposure(c.state.Exposure)

	preset, err := environment.ParsePreset(c.state.Preset)
	if err != nil {
		panic(fmt.Sprintf("controller: %v", err))
	}
	if preset == c.requested {
		return
	}
	c.requested = preset
	c.generation++
	c.Close()
	c.loading = false

	if preset == environment.PresetNone {
		c.apply(nil)
		c.notices.Done(environmentNotice)
		return
	}
	if m, ok := c.cache[preset]; ok {
		c.apply(m)
		c.notices.Done(environmentNotice)
		return
	}

	gen := c.generation
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.loading = true
	c.notices.Loading(environmentNotice, fmt.Sprintf("Loading %s environment", preset), -1)
	c.loader.LoadEnvironment(ctx, preset, c.files(preset), loader.EnvironmentCallbacks{
		OnLoad: func(m *environment.Map) {
			c.post(func() { c.finishLoad(gen, preset, m) })
		},
		OnError: func(err error) {
			c.post(func() { c.failLoad(gen, preset, err) })
		},
	})
}

func (c *EnvironmentController) finishLoad(gen uint64, preset environment.Preset, m *environment.Map) {
	c.cache[preset] = m
	if gen != c.generation {
		logger.Log.Debug("stale environment load dropped", zap.String("preset", string(preset)))
		return
	}
	c.Close()
	c.loading = false
	c.apply(m)
	c.notices.Done(environmentNotice)
	logger.Log.Info("environment loaded", zap.String("preset", string(preset)))
	c.render()
}

func (c *EnvironmentController) failLoad(gen uint64, preset environment.Preset, err error) {
	if gen != c.generation || errors.Is(err, context.Canceled) {
		return
	}
	c.Close()
	c.loading = false
	// let the same preset be selected again to retry
	c.requested = ""
	logger.Log.Warn("environment load failed", zap.String("preset", string(preset)), zap.Error(err))
	c.notices.Fail(environmentNotice, fmt.Sprintf("Failed to load %s environment: %v", preset, err))
	c.render()
}

func (c *EnvironmentController) apply(m *environment.Map) {
	c.target.SetBackground(m)
	c.target.SetEnvironment(m)
}

// Routes returns the intent handlers of the environment panel.
func (c *EnvironmentController) Routes() map[string]intent.Handler {
	return map[string]intent.Handler{
		intent.RouteEnvironmentPreset: func(in intent.Intent) (intent.Intent, error) {
			p, err := environment.ParsePreset(in.(intent.EnvironmentPreset).Preset)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", intent.ErrInvalidIntent, err)
			}
			prev := c.SetPreset(p)
			if prev == p {
				return nil, nil
			}
			return intent.EnvironmentPreset{Preset: string(prev)}, nil
		},
		intent.RouteEnvironmentToneMapping: func(in intent.Intent) (intent.Intent, error) {
			tm, err := renderer.ParseToneMapping(in.(intent.EnvironmentToneMapping).Mode)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", intent.ErrInvalidIntent, err)
			}
			prev := c.SetToneMapping(tm)
			if prev == tm {
				return nil, nil
			}
			return intent.EnvironmentToneMapping{Mode: prev.String()}, nil
		},
		intent.RouteEnvironmentExposure: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.EnvironmentExposure).Value
			prev := c.SetExposure(v)
			if prev == c.state.Exposure {
				return nil, nil
			}
			return intent.EnvironmentExposure{Value: prev}, nil
		},
	}
}

func (c *EnvironmentController) render() {
	view := EnvironmentView{
		EnvironmentState: c.state,
		MaxExposure:      intent.MaxExposure,
		Loading:          c.loading,
	}
	for _, p := range environment.Presets() {
		view.Presets = append(view.Presets, string(p))
	}
	for _, tm := range renderer.ToneMappings() {
		view.ToneMappings = append(view.ToneMappings, tm.String())
	}
	c.container.Render(view)
}

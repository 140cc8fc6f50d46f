package app

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/config"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/controller"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/chewxy/math32"
)

// rendererOptions translates the renderer section of cfg.
func rendererOptions(cfg *config.Config) ([]renderer.RendererBuilderOption, error) {
	shadows, err := renderer.ParseShadowMode(cfg.Renderer.ShadowMode)
	if err != nil {
		return nil, fmt.Errorf("renderer.shadow_mode: %w", err)
	}
	toneMapping, err := renderer.ParseToneMapping(cfg.Environment.ToneMapping)
	if err != nil {
		return nil, fmt.Errorf("environment.tone_mapping: %w", err)
	}

	msaa := renderer.MSAAOff
	if cfg.Renderer.MSAA {
		msaa = renderer.MSAA4x
	}
	present := renderer.PresentModeUncapped
	if cfg.Renderer.VSync {
		present = renderer.PresentModeVSync
	}
	return []renderer.RendererBuilderOption{
		renderer.WithShadowMode(shadows),
		renderer.WithMSAA(msaa),
		renderer.WithPresentMode(present),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
		renderer.WithToneMapping(toneMapping),
		renderer.WithExposure(cfg.Environment.Exposure),
	}, nil
}

func environmentState(cfg *config.Config) controller.EnvironmentState {
	return controller.EnvironmentState{
		Preset:      cfg.Environment.Preset,
		ToneMapping: cfg.Environment.ToneMapping,
		Exposure:    cfg.Environment.Exposure,
	}
}

// environmentIntents are the intents that bring the environment panel to cfg. Unchanged
// values are no-ops for the controller and leave no undo entry.
func environmentIntents(cfg *config.Config) []intent.Intent {
	return []intent.Intent{
		intent.EnvironmentToneMapping{Mode: cfg.Environment.ToneMapping},
		intent.EnvironmentExposure{Value: cfg.Environment.Exposure},
		intent.EnvironmentPreset{Preset: cfg.Environment.Preset},
	}
}

func radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

package renderer

import (
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend injects the backend instead of creating one for the surface.
//
// Parameters:
//   - backend: the backend to drive
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithPipelines replaces the built-in pipelines. The map must contain the lit, sky, lines and
// shadow keys; it is validated on the first Render.
//
// Parameters:
//   - pipelines: a map of pipeline keys to their corresponding Pipeline objects
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipelines option to a renderer
func WithPipelines(pipelines map[string]pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache = pipelines
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithShadowMode sets the initial shadow filtering mode. Defaults to ShadowModePCF.
func WithShadowMode(mode ShadowMode) RendererBuilderOption {
	return func(r *renderer) {
		r.settings.shadowMode = mode
	}
}

// WithToneMapping sets the initial tone mapping operator. Defaults to ToneMappingACESFilmic.
func WithToneMapping(tm ToneMapping) RendererBuilderOption {
	return func(r *renderer) {
		r.settings.toneMapping = tm
	}
}

// WithExposure sets the initial exposure. Defaults to 1.
func WithExposure(exposure float32) RendererBuilderOption {
	return func(r *renderer) {
		r.settings.exposure = max(exposure, 0)
	}
}

// WithShadowMapSize sets the width and height of the shadow map in texels.
//
// Parameters:
//   - size: the shadow map resolution, ignored unless positive
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow map size to a renderer
func WithShadowMapSize(size int) RendererBuilderOption {
	return func(r *renderer) {
		if size > 0 {
			r.shadowMapSize = size
		}
	}
}

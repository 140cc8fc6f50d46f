package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// ShadowMode selects how the shadow map is filtered. The values match the shader's shadow_mode.
type ShadowMode uint32

const (
	// ShadowModeOff skips the shadow pass entirely.
	ShadowModeOff ShadowMode = iota
	// ShadowModeBasic takes a single comparison sample.
	ShadowModeBasic
	// ShadowModePCF averages a 3x3 kernel of comparison samples.
	ShadowModePCF
	// ShadowModePCFSoft averages a wider 5x5 kernel for softer edges.
	ShadowModePCFSoft
)

var shadowModeNames = map[ShadowMode]string{
	ShadowModeOff:     "off",
	ShadowModeBasic:   "basic",
	ShadowModePCF:     "pcf",
	ShadowModePCFSoft: "pcf_soft",
}

func (m ShadowMode) String() string {
	if s, ok := shadowModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ShadowMode(%d)", uint32(m))
}

// ParseShadowMode converts a shadow mode name into a ShadowMode.
//
// Parameters:
//   - s: one of "off", "basic", "pcf", "pcf_soft"
//
// Returns:
//   - ShadowMode: the parsed mode
//   - error: an error if the name is unknown
func ParseShadowMode(s string) (ShadowMode, error) {
	for m, name := range shadowModeNames {
		if name == s {
			return m, nil
		}
	}
	return ShadowModeOff, fmt.Errorf("unknown shadow mode %q", s)
}

// ToneMapping selects the operator that maps linear radiance to display values.
// The values match the shader's tone_mapping.
type ToneMapping uint32

const (
	ToneMappingNone ToneMapping = iota
	ToneMappingLinear
	ToneMappingReinhard
	ToneMappingCineon
	ToneMappingACESFilmic
)

var toneMappingNames = []string{"none", "linear", "reinhard", "cineon", "aces_filmic"}

func (t ToneMapping) String() string {
	if int(t) < len(toneMappingNames) {
		return toneMappingNames[t]
	}
	return fmt.Sprintf("ToneMapping(%d)", uint32(t))
}

// ToneMappings lists every tone mapping operator in display order.
func ToneMappings() []ToneMapping {
	return []ToneMapping{ToneMappingNone, ToneMappingLinear, ToneMappingReinhard, ToneMappingCineon, ToneMappingACESFilmic}
}

// ParseToneMapping converts an operator name into a ToneMapping.
//
// Parameters:
//   - s: one of "none", "linear", "reinhard", "cineon", "aces_filmic"
//
// Returns:
//   - ToneMapping: the parsed operator
//   - error: an error if the name is unknown
func ParseToneMapping(s string) (ToneMapping, error) {
	for i, name := range toneMappingNames {
		if name == s {
			return ToneMapping(i), nil
		}
	}
	return ToneMappingNone, fmt.Errorf("unknown tone mapping %q", s)
}

// RendererBackend is the GPU API surface the Renderer drives. Resources are created onto
// bind group providers and draws read them back, so the Renderer itself never touches the
// GPU API directly. Frame calls are made from a single goroutine.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and the MSAA and depth targets at a pixel size.
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the GPU pipeline for a vertex and fragment shader pair.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterShadowPipeline creates a depth-only GPU pipeline targeting the shadow map.
	RegisterShadowPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads indexed geometry into new vertex and index buffers on provider.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitVertexBuffer uploads non-indexed geometry into a new vertex buffer on provider.
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// InitBindGroup creates a bind group for provider against layout. Buffer bindings that have no
	// buffer yet get a new one sized from the descriptor; texture and sampler bindings must already be set.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, descriptor wgpu.BindGroupLayoutDescriptor) error

	// InitTextureView uploads staging data (with its mip levels) and stores the view at binding.
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, staging common.TextureStagingData) error

	// InitDepthTexture creates a square Depth32Float texture usable as both attachment and binding.
	InitDepthTexture(provider bind_group_provider.BindGroupProvider, binding int, size int) error

	// InitSampler creates a sampler and stores it at binding.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, staging common.SamplerStagingData) error

	// WriteBuffers queues buffer uploads.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginShadowPass starts a depth-only pass into the depth texture stored at binding on provider.
	BeginShadowPass(provider bind_group_provider.BindGroupProvider, binding int) error

	// ShadowDrawCall draws indexed geometry into the current shadow pass.
	ShadowDrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndShadowPass ends the shadow pass and submits it.
	EndShadowPass()

	// BeginFrame acquires the next surface texture and starts the main pass.
	BeginFrame() error

	// DrawCall draws indexed geometry into the main pass.
	DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// DrawLines draws non-indexed geometry into the main pass.
	DrawLines(p pipeline.Pipeline, lines bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// DrawFullscreen draws a single vertex-generated triangle covering the viewport.
	DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame ends the main pass and submits it.
	EndFrame()

	// Present presents the acquired surface texture.
	Present()

	// Release frees the device and surface.
	Release()
}

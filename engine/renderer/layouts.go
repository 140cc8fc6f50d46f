package renderer

import (
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Frame bind group (group 0) bindings.
const (
	bindingFrame         = 0
	bindingLights        = 1
	bindingShadowMap     = 2
	bindingShadowSampler = 3
	bindingBackground    = 4
	bindingEnvironment   = 5
	bindingEnvSampler    = 6
)

// bindingObject is the single binding of the object bind group (group 1).
const bindingObject = 0

const (
	pipelineLit    = "lit"
	pipelineSky    = "sky"
	pipelineLines  = "lines"
	pipelineShadow = "shadow"
)

const stageAll = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

// frameLayout describes group 0 as seen by the lit, sky and line pipelines. Every pipeline
// uses the full descriptor so the frame bind group is compatible with all of them.
func frameLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    bindingFrame,
				Visibility: stageAll,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: frameUniformSize},
			},
			{
				Binding:    bindingLights,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(light.MaxGPULights * (&light.GPULight{}).Size()),
				},
			},
			{
				Binding:    bindingShadowMap,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeDepth, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    bindingShadowSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison},
			},
			{
				Binding:    bindingBackground,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    bindingEnvironment,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    bindingEnvSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	}
}

// shadowFrameLayout describes group 0 in the shadow pass. The shadow map is the pass's
// depth attachment there, so it cannot also be bound.
func shadowFrameLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    bindingFrame,
				Visibility: stageAll,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: frameUniformSize},
			},
		},
	}
}

// objectLayout describes group 1, shared by the lit and shadow pipelines.
func objectLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Object Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    bindingObject,
				Visibility: stageAll,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: objectUniformSize},
			},
		},
	}
}

func lineVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: lineVertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}
}

// builtinPipelines builds the four pipelines the renderer draws with.
//
// Returns:
//   - map[string]pipeline.Pipeline: the pipelines keyed by PipelineKey
func builtinPipelines() map[string]pipeline.Pipeline {
	lit := pipeline.NewPipeline(pipelineLit, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShader("lit_vs", shader.ShaderTypeVertex, shader.LitSource,
			shader.WithBindGroupLayout(0, frameLayout()),
			shader.WithBindGroupLayout(1, objectLayout()),
			shader.WithVertexLayouts(model.VertexBufferLayout()),
		)),
		pipeline.WithFragmentShader(shader.NewShader("lit_fs", shader.ShaderTypeFragment, shader.LitSource,
			shader.WithBindGroupLayout(0, frameLayout()),
			shader.WithBindGroupLayout(1, objectLayout()),
		)),
		pipeline.WithCullMode(wgpu.CullModeNone),
	)

	sky := pipeline.NewPipeline(pipelineSky, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShader("sky_vs", shader.ShaderTypeVertex, shader.SkySource,
			shader.WithBindGroupLayout(0, frameLayout()),
		)),
		pipeline.WithFragmentShader(shader.NewShader("sky_fs", shader.ShaderTypeFragment, shader.SkySource,
			shader.WithBindGroupLayout(0, frameLayout()),
		)),
		pipeline.WithDepth(false, false),
	)

	lines := pipeline.NewPipeline(pipelineLines, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shader.NewShader("line_vs", shader.ShaderTypeVertex, shader.LineSource,
			shader.WithBindGroupLayout(0, frameLayout()),
			shader.WithVertexLayouts(lineVertexLayout()),
		)),
		pipeline.WithFragmentShader(shader.NewShader("line_fs", shader.ShaderTypeFragment, shader.LineSource,
			shader.WithBindGroupLayout(0, frameLayout()),
		)),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
	)

	shadow := pipeline.NewPipeline(pipelineShadow, pipeline.PipelineTypeShadow,
		pipeline.WithVertexShader(shader.NewShader("shadow_vs", shader.ShaderTypeVertex, shader.ShadowSource,
			shader.WithBindGroupLayout(0, shadowFrameLayout()),
			shader.WithBindGroupLayout(1, objectLayout()),
			shader.WithVertexLayouts(model.VertexBufferLayout()),
		)),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithDepthBias(2, 2.0),
	)

	return map[string]pipeline.Pipeline{
		lit.PipelineKey():    lit,
		sky.PipelineKey():    sky,
		lines.PipelineKey():  lines,
		shadow.PipelineKey(): shadow,
	}
}

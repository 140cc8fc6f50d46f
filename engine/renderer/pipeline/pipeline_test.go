package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("lit", PipelineTypeRender)

	assert.Equal(t, "lit", p.PipelineKey())
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
	assert.Nil(t, p.RenderPipeline())
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("shadow", PipelineTypeShadow,
		WithDepth(true, false),
		WithDepthBias(2, 1.5),
		WithCullMode(wgpu.CullModeBack),
		WithTopology(wgpu.PrimitiveTopologyLineList),
	)

	assert.Equal(t, PipelineTypeShadow, p.Type())
	assert.True(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.Equal(t, float32(1.5), p.DepthBiasSlopeScale())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
}

func TestBindGroupLayoutOutOfRange(t *testing.T) {
	p := NewPipeline("sky", PipelineTypeRender)
	assert.Nil(t, p.BindGroupLayout(-1))
	assert.Nil(t, p.BindGroupLayout(0))
	assert.NotPanics(t, p.Release)
}

package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderKeepsLabel(t *testing.T) {
	p := NewBindGroupProvider("frame", WithIndexCount(36), WithVersion(3))
	assert.Equal(t, "frame", p.Label())
	assert.Equal(t, 36, p.IndexCount())
	assert.Equal(t, uint64(3), p.Version())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
}

func TestShareMarksBindingAsBorrowed(t *testing.T) {
	p := NewBindGroupProvider("frame")
	p.ShareTextureView(4, nil)
	p.ShareBuffer(0, nil)
	assert.True(t, p.Shared(4))
	assert.True(t, p.Shared(0))

	p.SetTexture(4, nil, nil)
	assert.False(t, p.Shared(4))
	assert.True(t, p.Shared(0))
}

func TestReleaseResetsCounts(t *testing.T) {
	p := NewBindGroupProvider("lines")
	p.SetVertexCount(12)
	p.SetIndexCount(6)
	p.ShareBuffer(0, nil)

	p.Release()
	assert.Zero(t, p.VertexCount())
	assert.Zero(t, p.IndexCount())
	assert.False(t, p.Shared(0))
}

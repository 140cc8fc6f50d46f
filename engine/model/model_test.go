package model

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveBounds(t *testing.T) {
	tests := []struct {
		kind PrimitiveKind
		size [3]float32
	}{
		{PrimitiveBox, [3]float32{1, 1, 1}},
		{PrimitiveSphere, [3]float32{1, 1, 1}},
		{PrimitiveCylinder, [3]float32{1, 1, 1}},
		{PrimitiveTorus, [3]float32{1.4, 1.4, 0.4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			m, err := NewPrimitive(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, string(tt.kind), m.Name())
			assert.InDeltaSlice(t, tt.size[:], sizeSlice(m.Bounds()), 1e-3)
			center := m.Bounds().Center()
			assert.InDeltaSlice(t, []float32{0, 0, 0}, center[:], 1e-3)
		})
	}
}

func sizeSlice(b Bounds) []float32 {
	s := b.Size()
	return s[:]
}

func TestPrimitiveMeshesAreWellFormed(t *testing.T) {
	for _, kind := range PrimitiveKinds() {
		m, err := NewPrimitive(kind)
		require.NoError(t, err)
		require.Len(t, m.Meshes(), 1)
		mesh := m.Meshes()[0]
		assert.Zero(t, len(mesh.Indices)%3, kind)
		assert.Positive(t, m.TriangleCount())
		for _, idx := range mesh.Indices {
			require.Less(t, int(idx), len(mesh.Vertices), kind)
		}
		for _, v := range mesh.Vertices {
			n := v.Normal
			assert.InDelta(t, 1, math32.Sqrt(n[0]*n[0]+n[1]*n[1]+n[2]*n[2]), 1e-4, kind)
		}
	}
}

func TestNewPrimitiveRejectsUnknownKind(t *testing.T) {
	_, err := NewPrimitive("teapot")
	assert.Error(t, err)
}

func TestModelIDsAreUnique(t *testing.T) {
	a := NewModel()
	b := NewModel()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, a.Bounds().IsEmpty())
	assert.Equal(t, float32(0), a.Bounds().MaxDimension())
}

func TestMarshalVertices(t *testing.T) {
	buf := MarshalVertices([]Vertex{{Position: [3]float32{1, 2, 3}}, {}})
	assert.Len(t, buf, 2*VertexSize)
	assert.Equal(t, VertexSize, (&Vertex{}).Size())
	assert.Len(t, MarshalIndices([]uint32{0, 1, 2}), 12)
}

package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrimitiveCarriesEditableMaterial(t *testing.T) {
	mat := material.NewMaterial(material.WithRoughness(0.5))
	obj := NewPrimitive(KindBox, mat, WithPosition([3]float32{1, 0.5, -1}))

	assert.Equal(t, KindBox, obj.Kind())
	assert.Equal(t, "box", obj.Name())
	assert.Same(t, mat, obj.Material())
	assert.Equal(t, [3]float32{1, 1, 1}, obj.Scale())
	assert.Equal(t, [3]float32{1, 0.5, -1}, obj.Position())
	assert.True(t, obj.Enabled())
}

func TestNewPrimitivePanicsOnModelKind(t *testing.T) {
	assert.Panics(t, func() { NewPrimitive(KindModel, nil) })
	assert.Panics(t, func() { NewPrimitive("cone", nil) })
}

func TestImportedObjectIsNotShaded(t *testing.T) {
	mdl := model.NewModel(
		model.WithName("duck"),
		model.WithMaterials(common.ImportedMaterial{Name: "skin", BaseColor: [4]float32{1, 1, 0, 1}}),
	)
	obj := NewImported(mdl)

	_, ok := obj.(Shaded)
	assert.False(t, ok)
	assert.Equal(t, KindModel, obj.Kind())
	assert.Equal(t, "duck", obj.Name())
	require.Len(t, obj.Materials(), 2)
	assert.Equal(t, "skin", obj.Materials()[0].Name())
}

func TestSetScaleChangesOneAxis(t *testing.T) {
	obj := NewPrimitive(KindBox, nil)
	obj.SetScale(common.WithAxis(obj.Scale(), common.AxisX, 3))
	assert.Equal(t, [3]float32{3, 1, 1}, obj.Scale())
}

func TestModelMatrixComposesTransform(t *testing.T) {
	obj := NewPrimitive(KindSphere, nil,
		WithPosition([3]float32{1, 2, 3}),
		WithScale([3]float32{2, 2, 2}),
	)
	p := obj.ModelMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDeltaSlice(t, []float32{3, 2, 3, 1}, p[:], 1e-5)
}

func TestParseKind(t *testing.T) {
	for _, k := range append(PrimitiveKinds(), KindModel) {
		got, ok := ParseKind(string(k))
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("cone")
	assert.False(t, ok)
}

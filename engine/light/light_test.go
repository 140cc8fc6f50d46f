package light

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightCapabilitiesByKind(t *testing.T) {
	tests := []struct {
		kind       Kind
		positioned bool
		targeted   bool
		shadows    bool
		coned      bool
	}{
		{KindAmbient, false, false, false, false},
		{KindDirectional, true, true, true, false},
		{KindPoint, true, false, false, false},
		{KindSpot, true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			l := NewLight(tt.kind)
			assert.Equal(t, tt.kind, l.Kind())
			_, ok := l.(Positioned)
			assert.Equal(t, tt.positioned, ok)
			_, ok = l.(Targeted)
			assert.Equal(t, tt.targeted, ok)
			_, ok = l.(ShadowCaster)
			assert.Equal(t, tt.shadows, ok)
			_, ok = l.(Coned)
			assert.Equal(t, tt.coned, ok)
		})
	}
}

func TestNewLightPanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() { NewLight(Kind(42)) })
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("area")
	assert.False(t, ok)
}

func TestSetIntensityStoresNonNegative(t *testing.T) {
	l := NewLight(KindPoint)
	l.SetIntensity(-2)
	assert.Equal(t, float32(0), l.Intensity())
	l.SetIntensity(3.5)
	assert.Equal(t, float32(3.5), l.Intensity())
}

func TestSpotDefaults(t *testing.T) {
	l := NewLight(KindSpot, WithPosition([3]float32{2, 5, 2}), WithCastsShadows(true))
	c := l.(Coned)
	assert.InDelta(t, math32.Pi/6, c.Angle(), 1e-6)
	assert.InDelta(t, 0.2, c.Penumbra(), 1e-6)
	assert.True(t, l.(ShadowCaster).CastsShadows())

	g := ToGPULight(l)
	assert.Equal(t, uint32(1), g.CastsShadows)
	assert.Greater(t, g.CosInner, g.CosOuter)
	dir := l.(Targeted).Direction()
	assert.InDelta(t, 1, math32.Sqrt(dir[0]*dir[0]+dir[1]*dir[1]+dir[2]*dir[2]), 1e-5)
}

func TestPackLightsSumsAmbientAndCapsArray(t *testing.T) {
	lights := []Light{
		NewLight(KindAmbient, WithColor([3]float32{1, 0.5, 0}), WithIntensity(2)),
		NewLight(KindAmbient, WithIntensity(0.5)),
	}
	for range MaxGPULights + 3 {
		lights = append(lights, NewLight(KindPoint))
	}

	packed, ambient := PackLights(lights)
	assert.Len(t, packed, MaxGPULights)
	assert.InDeltaSlice(t, []float32{2.5, 1.5, 0.5}, ambient[:], 1e-6)

	buf := MarshalLightArray(packed)
	assert.Len(t, buf, MaxGPULights*64)
}

func TestShadowViewProjectionOnlyForEnabledCasters(t *testing.T) {
	_, ok := ShadowViewProjection(NewLight(KindPoint))
	assert.False(t, ok)
	_, ok = ShadowViewProjection(NewLight(KindDirectional, WithPosition([3]float32{5, 5, 5})))
	assert.False(t, ok)

	vp, ok := ShadowViewProjection(NewLight(KindDirectional, WithPosition([3]float32{5, 5, 5}), WithCastsShadows(true)))
	require.True(t, ok)
	// the target sits inside the clip volume
	clip := vp.Mul4x1([4]float32{0, 0, 0, 1})
	assert.InDelta(t, 0, clip[0]/clip[3], 1e-4)
	assert.Greater(t, clip[2]/clip[3], float32(0))
	assert.Less(t, clip[2]/clip[3], float32(1))
}

func TestHelperNilForAmbient(t *testing.T) {
	assert.Nil(t, NewHelper(NewLight(KindAmbient)))
}

func TestHelperRefreshTracksLight(t *testing.T) {
	l := NewLight(KindPoint, WithPosition([3]float32{2, 2, 2}))
	h := NewHelper(l)
	require.NotNil(t, h)
	v := h.Version()
	assert.Equal(t, [3]float32{1, 1, 1}, h.Color())

	l.SetColor([3]float32{1, 0, 0})
	l.(Positioned).SetPosition([3]float32{0, 4, 0})
	assert.Equal(t, [3]float32{1, 1, 1}, h.Color())

	h.Refresh()
	assert.Equal(t, v+1, h.Version())
	assert.Equal(t, [3]float32{1, 0, 0}, h.Color())
	for _, s := range h.Segments() {
		assert.InDelta(t, 4, s[0][1], 0.51)
	}
}

func TestHelperDirectionalEndsAtTarget(t *testing.T) {
	l := NewLight(KindDirectional, WithPosition([3]float32{5, 5, 5}))
	segs := NewHelper(l).Segments()
	require.NotEmpty(t, segs)
	last := segs[len(segs)-1]
	assert.Equal(t, [3]float32{5, 5, 5}, last[0])
	assert.Equal(t, [3]float32{0, 0, 0}, last[1])
}

package environment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreset(t *testing.T) {
	for _, p := range Presets() {
		got, err := ParsePreset(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePreset("beach")
	assert.Error(t, err)
}

func TestEncodeDecodeIsMonotonicAndBounded(t *testing.T) {
	assert.Equal(t, uint8(0), Encode(0))
	assert.Equal(t, uint8(255), Encode(EncodeRange*4))
	assert.InDelta(t, 1, Decode(Encode(1)), 0.05)
	prev := Encode(0)
	for v := float32(0.01); v < EncodeRange; v *= 1.5 {
		assert.GreaterOrEqual(t, Encode(v), prev)
		prev = Encode(v)
	}
}

func TestPrefilterBuildsFullMipChain(t *testing.T) {
	img := Synthesize(PresetStudio, 64)
	require.NotNil(t, img)

	m, err := Prefilter(context.Background(), PresetStudio, img)
	require.NoError(t, err)
	assert.Equal(t, 64, m.Width)
	assert.Equal(t, 32, m.Height)
	require.Len(t, m.Levels, 7)
	for i, level := range m.Levels {
		w, h := max(1, 64>>i), max(1, 32>>i)
		assert.Len(t, level, w*h*4, "level %d", i)
	}
	assert.Equal(t, float32(6), m.MaxLOD())
	assert.Greater(t, m.Irradiance[0], float32(0))

	st := m.Staging()
	assert.Equal(t, uint32(7), st.MipLevelCount())
}

func TestPrefilterDownscalesWidePanoramas(t *testing.T) {
	m, err := Prefilter(context.Background(), PresetCity, NewHDRImage(MaxBaseWidth*2, MaxBaseWidth))
	require.NoError(t, err)
	assert.Equal(t, MaxBaseWidth, m.Width)
	assert.Equal(t, MaxBaseWidth/2, m.Height)
}

func TestPrefilterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Prefilter(ctx, PresetNight, Synthesize(PresetNight, 32))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrefilterRejectsEmpty(t *testing.T) {
	_, err := Prefilter(context.Background(), PresetNight, &HDRImage{})
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestSynthesizeNoneIsNil(t *testing.T) {
	assert.Nil(t, Synthesize(PresetNone, 64))
}

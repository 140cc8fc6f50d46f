package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindowClampsToLimits(t *testing.T) {
	w := newEngineWindow(WithSize(100, 5000), WithMinSize(640, 480), WithMaxSize(1920, 1080))
	width, height := w.Size()
	assert.Equal(t, 640, width)
	assert.Equal(t, 1080, height)
	assert.Equal(t, float32(1), w.PixelRatio())
}

func TestSetSizeDerivesPixelRatio(t *testing.T) {
	w := newEngineWindow(WithSize(800, 600))
	var calls [][2]int
	w.SetResizeCallback(func(width, height int) {
		calls = append(calls, [2]int{width, height})
	})

	w.setSize(800, 600, 1600)
	w.setSize(800, 600, 1600)
	w.setSize(1024, 768, 1024)

	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, calls)
	assert.Equal(t, float32(1), w.PixelRatio())
}

func TestSetSizeHandlesMinimisedWindow(t *testing.T) {
	w := newEngineWindow()
	w.setSize(0, 0, 0)
	width, height := w.Size()
	assert.Zero(t, width)
	assert.Zero(t, height)
	assert.Equal(t, float32(1), w.PixelRatio())
}

func TestRequestCloseStopsWindowWithoutPlatform(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.IsRunning())
	w.RequestClose()
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Close())
}

package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerDefaultsLookFromFiveFiveFive(t *testing.T) {
	cc := NewCameraController()
	pos := cc.Position()
	assert.InDelta(t, 5, pos[0], 1e-4)
	assert.InDelta(t, 5, pos[1], 1e-4)
	assert.InDelta(t, 5, pos[2], 1e-4)
}

func TestControllerDampingAppliesFractionPerFrame(t *testing.T) {
	cc := NewCameraController(WithDamping(0.5), WithMouseSensitivity(1))
	start := cc.Azimuth()

	cc.Rotate(-1, 0)
	require.True(t, cc.Update(1.0/60))
	assert.InDelta(t, start+0.5, cc.Azimuth(), 1e-5)

	require.True(t, cc.Update(1.0/60))
	assert.InDelta(t, start+0.75, cc.Azimuth(), 1e-5)
}

func TestControllerSettlesToFullDelta(t *testing.T) {
	cc := NewCameraController(WithDamping(0.2), WithMouseSensitivity(1))
	start := cc.Azimuth()
	cc.Rotate(-1, 0)

	for range 500 {
		if !cc.Update(1.0 / 60) {
			break
		}
	}
	assert.InDelta(t, start+1, cc.Azimuth(), 1e-4)
	assert.False(t, cc.Update(1.0/60))
}

func TestControllerWithoutDampingAppliesImmediately(t *testing.T) {
	cc := NewCameraController(WithDamping(0), WithRadius(10), WithZoomSpeed(1))
	cc.Zoom(4)
	cc.Update(1.0 / 60)
	assert.InDelta(t, 6, cc.Radius(), 1e-5)
	assert.False(t, cc.Update(1.0/60))
}

func TestControllerClampsElevationAndRadius(t *testing.T) {
	cc := NewCameraController(WithRadiusBounds(2, 20))
	cc.SetRadius(100)
	assert.Equal(t, float32(20), cc.Radius())
	cc.SetRadius(0)
	assert.Equal(t, float32(2), cc.Radius())

	cc.SetElevation(math32.Pi)
	assert.Less(t, cc.Elevation(), math32.Pi/2)
}

func TestControllerPanMovesTargetAndPosition(t *testing.T) {
	cc := NewCameraController(WithDamping(1))
	before := cc.Position()
	cc.Pan(100, 0)
	cc.Update(1.0 / 60)

	target := cc.Target()
	after := cc.Position()
	assert.NotEqual(t, [3]float32{}, target)
	for i := range 3 {
		assert.InDelta(t, after[i]-before[i], target[i], 1e-4)
	}
}

func TestCameraAspectIgnoresInvalidValues(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()))
	c.SetAspect(2)
	assert.Equal(t, float32(2), c.Aspect())
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
	c.SetAspect(math32.Inf(1))
	assert.Equal(t, float32(2), c.Aspect())
}

func TestCameraInverseViewProjectionRoundTrips(t *testing.T) {
	c := NewCamera(WithController(NewCameraController()), WithAspect(16.0/9))
	m := c.ViewProjectionMatrix().Mul4(c.InverseViewProjectionMatrix())
	ident := mgl32.Ident4()
	for i := range m {
		assert.InDelta(t, ident[i], m[i], 1e-4, "element %d", i)
	}
}

func TestCameraUpdateFollowsController(t *testing.T) {
	cc := NewCameraController(WithDamping(1))
	c := NewCamera(WithController(cc))
	before := c.ViewMatrix()

	cc.Rotate(50, 0)
	cc.Update(1.0 / 60)
	c.Update()

	assert.False(t, before.ApproxEqual(c.ViewMatrix()))
	assert.Equal(t, cc.Position(), c.Position())
}

func TestCameraOptionsIgnoreInvalidValues(t *testing.T) {
	c := NewCamera(WithFov(-1), WithClipPlanes(10, 5)).(*cameraImpl)
	assert.InDelta(t, 50*math32.Pi/180, c.fov, 1e-6)
	assert.Equal(t, float32(0.1), c.near)
	assert.Equal(t, float32(1000), c.far)

	c = NewCamera(WithFov(math32.Pi/4), WithClipPlanes(0.5, 200)).(*cameraImpl)
	assert.Equal(t, math32.Pi/4, c.fov)
	assert.Equal(t, float32(0.5), c.near)
	assert.Equal(t, float32(200), c.far)
}

func TestControllerStartsFromOptions(t *testing.T) {
	cc := NewCameraController(WithRadius(10), WithAzimuth(0), WithElevation(0), WithTarget([3]float32{0, 1, 0}))
	assert.Equal(t, [3]float32{0, 1, 0}, cc.Target())
	pos := cc.Position()
	assert.InDelta(t, 0, pos[0], 1e-4)
	assert.InDelta(t, 1, pos[1], 1e-4)
	assert.InDelta(t, 10, pos[2], 1e-4)
}

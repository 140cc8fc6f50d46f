package camera

import (
	"sync"

	"github.com/chewxy/math32"
)

// settleEpsilon is the pending-motion magnitude below which damping stops.
const settleEpsilon = 1e-5

// cameraControllerImpl is the single implementation of CameraController.
// Orbit input modifies spherical coordinates and recomputes position; pan input
// translates both position and target along local camera axes.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position [3]float32
	target   [3]float32

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
	damping          float32

	// Motion queued by input and not yet applied
	pendingAzimuth   float32
	pendingElevation float32
	pendingRadius    float32
	pendingPan       [2]float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit camera controller. The defaults place the camera
// at (5, 5, 5) looking at the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius:    math32.Sqrt(75),
		azimuth:   math32.Pi / 4,
		elevation: math32.Asin(5 / math32.Sqrt(75)),

		minRadius:    1,
		maxRadius:    100,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         0.0015,
		damping:          0.05,
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius = clampf(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = clampf(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

func clampf(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

// localAxes computes the camera's right and up axes consistent with the LookAt matrix.
// If position and target coincide, all returned components are zero.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up [3]float32) {
	bx := cc.position[0] - cc.target[0]
	by := cc.position[1] - cc.target[1]
	bz := cc.position[2] - cc.target[2]
	bLen := math32.Sqrt(bx*bx + by*by + bz*bz)
	if bLen < 1e-8 {
		return
	}
	bx, by, bz = bx/bLen, by/bLen, bz/bLen

	// right = normalize(cross(worldUp, backward)) with worldUp = (0, 1, 0)
	rx, rz := bz, -bx
	rLen := math32.Sqrt(rx*rx + rz*rz)
	if rLen < 1e-8 {
		return
	}
	rx, rz = rx/rLen, rz/rLen

	right = [3]float32{rx, 0, rz}
	up = [3]float32{by * rz, bz*rx - bx*rz, -by * rx}
	return
}

func (cc *cameraControllerImpl) Position() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target [3]float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.pendingPan = [2]float32{}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = clampf(radius, cc.minRadius, cc.maxRadius)
	cc.pendingRadius = 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.pendingAzimuth = 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = clampf(elevation, cc.minElevation, cc.maxElevation)
	cc.pendingElevation = 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth -= dx * cc.mouseSensitivity
	cc.pendingElevation += dy * cc.mouseSensitivity
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	scale := cc.panSpeed * cc.radius
	cc.pendingPan[0] -= dx * scale
	cc.pendingPan[1] += dy * scale
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingRadius -= delta * cc.zoomSpeed
}

func (cc *cameraControllerImpl) Damping() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.damping
}

func (cc *cameraControllerImpl) SetDamping(factor float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if factor <= 0 || factor > 1 {
		factor = 1
	}
	cc.damping = factor
}

func (cc *cameraControllerImpl) Update(dt float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.pendingAzimuth == 0 && cc.pendingElevation == 0 && cc.pendingRadius == 0 &&
		cc.pendingPan[0] == 0 && cc.pendingPan[1] == 0 {
		return false
	}

	// fraction of pending motion consumed this frame, normalised to a 60Hz step
	f := cc.damping
	if f <= 0 || f >= 1 {
		f = 1
	} else if dt > 0 {
		f = 1 - math32.Pow(1-f, dt*60)
	}

	cc.azimuth += cc.pendingAzimuth * f
	cc.elevation = clampf(cc.elevation+cc.pendingElevation*f, cc.minElevation, cc.maxElevation)
	cc.radius = clampf(cc.radius+cc.pendingRadius*f, cc.minRadius, cc.maxRadius)

	right, up := cc.localAxes()
	px, py := cc.pendingPan[0]*f, cc.pendingPan[1]*f
	for i := range 3 {
		cc.target[i] += right[i]*px + up[i]*py
	}

	cc.pendingAzimuth = settle(cc.pendingAzimuth * (1 - f))
	cc.pendingElevation = settle(cc.pendingElevation * (1 - f))
	cc.pendingRadius = settle(cc.pendingRadius * (1 - f))
	cc.pendingPan[0] = settle(cc.pendingPan[0] * (1 - f))
	cc.pendingPan[1] = settle(cc.pendingPan[1] * (1 - f))

	cc.updatePosition()
	return true
}

func settle(v float32) float32 {
	if math32.Abs(v) < settleEpsilon {
		return 0
	}
	return v
}

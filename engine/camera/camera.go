package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = [3]float32{0, 1, 0}

type cameraImpl struct {
	mu sync.Mutex

	fov    float32
	aspect float32
	near   float32
	far    float32

	controller CameraController

	eye        [3]float32
	view       mgl32.Mat4
	viewProj   mgl32.Mat4
	invViewPrj mgl32.Mat4
}

// Camera turns the orbit controller's eye and target into the matrices a frame needs.
// Matrices are recomputed by Update and SetAspect; the getters return the last result.
type Camera interface {
	// Aspect returns the width / height ratio.
	Aspect() float32

	// SetAspect replaces the aspect ratio. Non-positive and non-finite values are ignored,
	// which covers a minimised window.
	SetAspect(aspect float32)

	// Position returns the eye position from the last update, or the origin without a
	// controller.
	Position() [3]float32

	// ViewMatrix returns the world-to-view matrix.
	ViewMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	ViewProjectionMatrix() mgl32.Mat4

	// InverseViewProjectionMatrix returns the inverse of projection * view. The sky pass
	// rebuilds world-space view rays from it.
	//
	// Returns:
	//   - mgl32.Mat4: the inverse, or the previous inverse while projection * view is singular
	InverseViewProjectionMatrix() mgl32.Mat4

	// Controller returns the attached orbit controller, or nil.
	Controller() CameraController

	// Update re-reads the controller and recomputes the matrices.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera: 50 degree vertical fov, aspect 1, clip planes
// 0.1 to 1000, unless options say otherwise.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the camera with its matrices already computed
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		fov:        50 * math32.Pi / 180,
		aspect:     1,
		near:       0.1,
		far:        1000,
		view:       mgl32.Ident4(),
		invViewPrj: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.recompute()
	return c
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 || math32.IsInf(aspect, 0) || math32.IsNaN(aspect) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.recompute()
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) InverseViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invViewPrj
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute()
}

// recompute must be called with mu held.
func (c *cameraImpl) recompute() {
	if c.controller != nil {
		c.eye = c.controller.Position()
		c.view = common.LookAt(c.eye, c.controller.Target(), worldUp)
	}
	c.viewProj = common.Perspective(c.fov, c.aspect, c.near, c.far).Mul4(c.view)
	if c.viewProj.Det() != 0 {
		c.invViewPrj = c.viewProj.Inv()
	}
}

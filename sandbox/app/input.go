package app

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/camera"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
)

// inputHandler turns window input into camera motion and history shortcuts.
// Left drag orbits, right drag pans, the wheel zooms. Ctrl+Z undoes, Ctrl+Y and
// Ctrl+Shift+Z redo, F returns the orbit to the configured
// camera target.
type inputHandler struct {
	camera   camera.CameraController
	dispatch func(intent.Intent)
	home     [3]float32

	mu       sync.Mutex
	rotating bool
	panning  bool
	lastX    float32
	lastY    float32
}

// newInputHandler routes window input to the orbit camera and history shortcuts. The F key
// moves the orbit target back to home.
func newInputHandler(ctrl camera.CameraController, home [3]float32, dispatch func(intent.Intent)) *inputHandler {
	return &inputHandler{camera: ctrl, home: home, dispatch: dispatch}
}

func (h *inputHandler) mouseButton(button int, pressed bool, x, y float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch button {
	case common.MouseButtonLeft:
		h.rotating = pressed
	case common.MouseButtonRight:
		h.panning = pressed
	default:
		return
	}
	h.lastX, h.lastY = x, y
}

func (h *inputHandler) mouseMove(x, y float32) {
	h.mu.Lock()
	dx, dy := x-h.lastX, y-h.lastY
	h.lastX, h.lastY = x, y
	rotating, panning := h.rotating, h.panning
	h.mu.Unlock()

	switch {
	case rotating:
		h.camera.Rotate(dx, dy)
	case panning:
		h.camera.Pan(dx, dy)
	}
}

func (h *inputHandler) scroll(delta float32) {
	h.camera.Zoom(delta)
}

func (h *inputHandler) keyDown(key, mods uint32) {
	ctrl := mods&common.ModControl != 0
	shift := mods&common.ModShift != 0
	switch {
	case ctrl && key == common.KeyZ && shift:
		h.dispatch(intent.Redo{})
	case ctrl && key == common.KeyZ:
		h.dispatch(intent.Undo{})
	case ctrl && key == common.KeyY:
		h.dispatch(intent.Redo{})
	case !ctrl && key == common.KeyF:
		h.camera.SetTarget(h.home)
	}
}

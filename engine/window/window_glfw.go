package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var errNotOpen = errors.New("window is not open")

// glfwWindow holds the GLFW handle behind an engineWindow.
type glfwWindow struct {
	owner   *engineWindow
	handle  *glfw.Window
	running bool
}

// glfwState returns the platform window, or nil once it has been closed.
func glfwState(w *engineWindow) *glfwWindow {
	gw, _ := w.internalWindow.(*glfwWindow)
	return gw
}

// newPlatformWindow opens a GLFW window without a client API, since wgpu drives the surface.
// GLFW must be used from one OS thread, so the calling goroutine is locked to it.
//
// Parameters:
//   - w: the engineWindow carrying the requested title and sizes
//
// Returns:
//   - error: if GLFW fails to initialise or create the window
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("glfw create window: %w", err)
	}
	handle.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{owner: w, handle: handle, running: true}
	w.internalWindow = gw
	gw.bindInput()
	gw.bindResize()
	return nil
}

// bindInput forwards keys, the wheel and left/right mouse buttons to the owner's callbacks.
// Escape closes the window.
func (gw *glfwWindow) bindInput() {
	w := gw.owner

	gw.handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if key == common.KeyEsc && action == glfw.Press {
			gw.running = false
			gw.handle.SetShouldClose(true)
			return
		}
		var cb func(uint32, uint32)
		switch action {
		case glfw.Press, glfw.Repeat:
			cb = w.onKeyDown
		case glfw.Release:
			cb = w.onKeyUp
		}
		if cb != nil {
			cb(uint32(key), uint32(mods))
		}
	})

	gw.handle.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		if w.onScroll != nil {
			w.onScroll(float32(dy))
		}
	})

	gw.handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.onMouseButton == nil || (button != common.MouseButtonLeft && button != common.MouseButtonRight) {
			return
		}
		x, y := gw.handle.GetCursorPos()
		w.onMouseButton(int(button), action == glfw.Press, float32(x), float32(y))
	})

	// Screen coordinates, the same units as the logical size.
	gw.handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(float32(x), float32(y))
		}
	})
}

// bindResize keeps the owner's logical size and pixel ratio current. Moving between monitors
// of different scale can fire either the size or the framebuffer callback alone, so both
// re-read the pair.
func (gw *glfwWindow) bindResize() {
	sync := func() {
		width, height := gw.handle.GetSize()
		fbWidth, _ := gw.handle.GetFramebufferSize()
		gw.owner.setSize(width, height, fbWidth)
	}
	gw.handle.SetSizeCallback(func(_ *glfw.Window, _, _ int) { sync() })
	gw.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) { sync() })
	sync()
}

// platformGetSurfaceDescriptor returns the wgpu surface descriptor for the open window, or nil.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw := glfwState(w)
	if gw == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.handle)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw := glfwState(w)
	return gw != nil && gw.running && !gw.handle.ShouldClose()
}

// platformCloseWindow destroys the window and terminates GLFW.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: errNotOpen if the window was never opened or is already closed
func platformCloseWindow(w *engineWindow) error {
	gw := glfwState(w)
	if gw == nil {
		return errNotOpen
	}
	gw.running = false
	gw.handle.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls pending events without blocking and reports whether the
// window is still open.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}

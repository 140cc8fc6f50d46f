package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyF   = 70  // F key (ASCII), returns the orbit to its home target
	KeyZ   = 90  // Z key (ASCII), undo with Ctrl
	KeyY   = 89  // Y key (ASCII), redo with Ctrl
	KeyEsc = 256 // Escape key (GLFW)
)

// Modifier bits reported alongside key events. These mirror glfw.ModifierKey.
const (
	ModShift   = 0x0001
	ModControl = 0x0002
)

// Mouse buttons reported by the window. These mirror glfw.MouseButton.
const (
	MouseButtonLeft  = 0
	MouseButtonRight = 1
)

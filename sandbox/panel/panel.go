// Package panel serves the control panels to the browser and pushes view-state to them.
//
// Each controller renders into one Container. A Container keeps the last view and the live
// notices so a panel that connects later sees the current state.
package panel

import (
	"errors"
)

// Container ids of the three sandbox panels.
const (
	LightsContainer      = "lights-panel"
	ObjectsContainer     = "objects-panel"
	EnvironmentContainer = "environment-panel"
)

// ContainerIDs returns the ids of every sandbox panel in display order.
func ContainerIDs() []string {
	return []string{LightsContainer, ObjectsContainer, EnvironmentContainer}
}

// ErrMissingContainer is returned when a controller asks for a container the host does not have.
var ErrMissingContainer = errors.New("missing container")

// NoticeKind selects how a notice is shown.
type NoticeKind string

const (
	// NoticeLoading is a progress indicator.
	NoticeLoading NoticeKind = "loading"
	// NoticeError reports a failure near the action that caused it.
	NoticeError NoticeKind = "error"
	// NoticeInfo is a plain message.
	NoticeInfo NoticeKind = "info"
)

// Notice is a transient message shown inside a panel.
type Notice struct {
	ID   string     `json:"id"`
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
	// Progress is the completed fraction in [0, 1], or -1 when unknown.
	Progress float32 `json:"progress"`
}

// Container is the render target of one panel. Implementations are safe for concurrent use.
type Container interface {
	// ID returns the container id.
	ID() string

	// Render replaces the panel's view-state. The view must encode to JSON.
	//
	// Parameters:
	//   - view: the new view-state
	Render(view any)

	// ShowNotice adds a notice, or replaces the notice with the same id.
	//
	// Parameters:
	//   - n: the notice
	ShowNotice(n Notice)

	// DismissNotice removes a notice. Unknown ids are ignored.
	//
	// Parameters:
	//   - id: the notice id
	DismissNotice(id string)
}

// Host resolves containers by id.
type Host interface {
	// Container returns the container with the given id.
	//
	// Parameters:
	//   - id: the container id
	//
	// Returns:
	//   - Container: the container
	//   - error: ErrMissingContainer if the host has no such container
	Container(id string) (Container, error)
}

package scene

import (
	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithBackground sets the initial background map.
//
// Parameters:
//   - m: the background map, nil for none
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackground(m *environment.Map) SceneBuilderOption {
	return func(s *scene) {
		s.background = m
	}
}

// WithEnvironment sets the initial image-based lighting map.
//
// Parameters:
//   - m: the environment map, nil for none
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEnvironment(m *environment.Map) SceneBuilderOption {
	return func(s *scene) {
		s.environment = m
	}
}

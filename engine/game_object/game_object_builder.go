package game_object

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithName overrides the display name. Defaults to the model name, or the kind.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if name != "" {
			obj.name = name
		}
	}
}

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - position: the translation
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(position [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = position
	}
}

// WithRotation sets the initial Euler rotation in radians.
func WithRotation(rotation [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = rotation
	}
}

// WithScale sets the initial per-axis scale.
func WithScale(scale [3]float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = scale
	}
}

// WithEnabled sets whether the object is drawn. Objects are enabled by default.
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

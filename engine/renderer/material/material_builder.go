package material

// MaterialBuilderOption is a function that configures a Material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the name to assign
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the albedo RGBA color.
//
// Parameters:
//   - color: the RGBA color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithColor sets the RGB part of the base color with full opacity.
func WithColor(rgb [3]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = [4]float32{rgb[0], rgb[1], rgb[2], 1}
	}
}

// WithRoughness sets the roughness factor.
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithMetalness sets the metallic factor.
func WithMetalness(metalness float32) MaterialBuilderOption {
	return func(m *material) {
		m.metalness = metalness
	}
}

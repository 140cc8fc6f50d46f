package model

import "github.com/Carmen-Shannon/oxy-lightlab/common"

// ModelBuilderOption is a function that configures a Model during construction.
type ModelBuilderOption func(*model)

// WithName sets the model's name.
//
// Parameters:
//   - name: the name to assign
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshes sets the model's meshes.
//
// Parameters:
//   - meshes: the meshes to assign
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option
func WithMeshes(meshes ...Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = append(m.meshes, meshes...)
	}
}

// WithMaterials sets the materials referenced by mesh material indices.
//
// Parameters:
//   - materials: the imported materials
//
// Returns:
//   - ModelBuilderOption: a function that applies the materials option
func WithMaterials(materials ...common.ImportedMaterial) ModelBuilderOption {
	return func(m *model) {
		m.materials = append(m.materials, materials...)
	}
}

package model

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
)

// modelCount hands out process-unique model ids, used as GPU cache keys.
var modelCount atomic.Uint64

// model is the implementation of the Model interface.
type model struct {
	id        uint64
	name      string
	meshes    []Mesh
	materials []common.ImportedMaterial
	bounds    Bounds
}

// Model is immutable triangle geometry with the materials it was imported with.
// Primitives and imported glTF scenes are both Models; the renderer uploads each
// model's meshes once, keyed by ID.
type Model interface {
	// ID returns a process-unique identifier.
	ID() uint64

	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes returns the model's meshes. The slice must not be modified.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// Materials returns the materials referenced by Mesh.MaterialIndex.
	//
	// Returns:
	//   - []common.ImportedMaterial: the imported materials
	Materials() []common.ImportedMaterial

	// Bounds returns the model-space bounding box of all vertices.
	//
	// Returns:
	//   - Bounds: the bounding box, empty if the model has no vertices
	Bounds() Bounds

	// TriangleCount returns the total number of triangles across all meshes.
	TriangleCount() int
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
// The bounding box is computed from the final mesh set.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{id: modelCount.Add(1)}
	for _, opt := range options {
		opt(m)
	}
	m.bounds = EmptyBounds()
	for _, mesh := range m.meshes {
		for _, v := range mesh.Vertices {
			m.bounds = m.bounds.Expand(v.Position)
		}
	}
	return m
}

func (m *model) ID() uint64 {
	return m.id
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) Materials() []common.ImportedMaterial {
	return m.materials
}

func (m *model) Bounds() Bounds {
	return m.bounds
}

func (m *model) TriangleCount() int {
	n := 0
	for _, mesh := range m.meshes {
		n += len(mesh.Indices) / 3
	}
	return n
}

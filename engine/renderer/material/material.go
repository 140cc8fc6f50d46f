package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
)

// material is the implementation of the Material interface.
type material struct {
	mu        *sync.RWMutex
	name      string
	baseColor [4]float32
	metalness float32
	roughness float32
}

// Material is a physically based surface description: a base color plus metalness and
// roughness factors. Materials are edited live from the control panel while the render
// goroutine reads them, so every accessor is synchronized.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// SetColor replaces the RGB part of the base color, keeping alpha.
	//
	// Parameters:
	//   - rgb: the new color
	SetColor(rgb [3]float32)

	// Metalness retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metalness() float32

	// SetMetalness sets the metallic factor, clamped to [0, 1].
	SetMetalness(metalness float32)

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// SetRoughness sets the roughness factor, clamped to [0, 1].
	SetRoughness(roughness float32)
}

var _ Material = &material{}

// NewMaterial creates a new Material. Defaults to opaque white, roughness 1, metalness 0.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the newly created material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:        &sync.RWMutex{},
		baseColor: [4]float32{1, 1, 1, 1},
		roughness: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	m.roughness = common.Clamp(m.roughness, 0, 1)
	m.metalness = common.Clamp(m.metalness, 0, 1)
	return m
}

// FromImported creates a Material from the factors read out of a model file.
//
// Parameters:
//   - im: the imported material
//
// Returns:
//   - Material: the material
func FromImported(im common.ImportedMaterial) Material {
	return NewMaterial(
		WithName(im.Name),
		WithBaseColor(im.BaseColor),
		WithRoughness(im.Roughness),
		WithMetalness(im.Metallic),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseColor
}

func (m *material) SetColor(rgb [3]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseColor[0], m.baseColor[1], m.baseColor[2] = rgb[0], rgb[1], rgb[2]
}

func (m *material) Metalness() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metalness
}

func (m *material) SetMetalness(metalness float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metalness = common.Clamp(metalness, 0, 1)
}

func (m *material) Roughness() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roughness
}

func (m *material) SetRoughness(roughness float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roughness = common.Clamp(roughness, 0, 1)
}

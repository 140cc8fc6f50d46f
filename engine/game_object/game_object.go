package game_object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies the shape of a visual object.
type Kind string

const (
	KindBox      Kind = Kind(model.PrimitiveBox)
	KindSphere   Kind = Kind(model.PrimitiveSphere)
	KindCylinder Kind = Kind(model.PrimitiveCylinder)
	KindTorus    Kind = Kind(model.PrimitiveTorus)
	// KindModel is an imported glTF scene.
	KindModel Kind = "model"
)

// PrimitiveKinds returns the kinds that are generated rather than imported.
func PrimitiveKinds() []Kind {
	return []Kind{KindBox, KindSphere, KindCylinder, KindTorus}
}

// ParseKind converts a kind name into a Kind.
//
// Parameters:
//   - s: the kind name
//
// Returns:
//   - Kind: the parsed kind
//   - bool: false if the name is unknown
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindBox, KindSphere, KindCylinder, KindTorus, KindModel:
		return k, true
	}
	return "", false
}

// IsPrimitive reports whether the kind is a generated shape.
func (k Kind) IsPrimitive() bool {
	return k != KindModel
}

// transform holds position, Euler rotation (radians) and scale, guarded for concurrent
// reads from the render goroutine.
type transform struct {
	mu       *sync.RWMutex
	position [3]float32
	rotation [3]float32
	scale    [3]float32
}

type gameObject struct {
	transform
	kind      Kind
	name      string
	enabled   atomic.Bool
	mdl       model.Model
	materials []material.Material
}

// primitiveObject is a generated shape with one editable material.
type primitiveObject struct {
	*gameObject
}

// GameObject is a live visual entity: a model placed in the world by a transform and shaded
// with one material per material slot of the model.
type GameObject interface {
	// Kind returns the object's shape.
	Kind() Kind

	// Name returns the display name.
	Name() string

	// Enabled returns whether this object is drawn.
	Enabled() bool

	// SetEnabled sets whether this object is drawn.
	SetEnabled(enabled bool)

	// Model returns the geometry.
	Model() model.Model

	// Materials returns the materials indexed by Mesh.MaterialIndex. The last entry is also
	// used for meshes with no material.
	//
	// Returns:
	//   - []material.Material: at least one material
	Materials() []material.Material

	// Position returns the world-space translation.
	Position() [3]float32

	// SetPosition sets the world-space translation.
	SetPosition(position [3]float32)

	// Rotation returns the Euler rotation in radians.
	Rotation() [3]float32

	// SetRotation sets the Euler rotation in radians.
	SetRotation(rotation [3]float32)

	// Scale returns the per-axis scale factors.
	Scale() [3]float32

	// SetScale sets the per-axis scale factors.
	SetScale(scale [3]float32)

	// ModelMatrix builds the model matrix from the current transform.
	//
	// Returns:
	//   - mgl32.Mat4: translation * rotation * scale
	ModelMatrix() mgl32.Mat4
}

// Shaded is implemented only by primitive objects, which carry a single uniform material
// that may be edited. Imported models do not implement it.
type Shaded interface {
	GameObject

	// Material returns the object's single material.
	Material() material.Material
}

var (
	_ GameObject = &gameObject{}
	_ Shaded     = &primitiveObject{}
)

// NewPrimitive creates a generated shape with the given material.
// It panics on an unknown or non-primitive kind.
//
// Parameters:
//   - kind: the shape
//   - mat: the material; nil selects a default white material
//   - options: functional options to configure the object
//
// Returns:
//   - Shaded: the new object
func NewPrimitive(kind Kind, mat material.Material, options ...GameObjectBuilderOption) Shaded {
	mdl, err := model.NewPrimitive(model.PrimitiveKind(kind))
	if err != nil || !kind.IsPrimitive() {
		panic(fmt.Sprintf("game_object: unsupported primitive kind %q", kind))
	}
	if mat == nil {
		mat = material.NewMaterial()
	}
	g := newGameObject(kind, mdl, []material.Material{mat}, options)
	return &primitiveObject{gameObject: g}
}

// NewImported creates an object for an imported model. One material is created per material
// of the model, plus a default material for meshes without one.
//
// Parameters:
//   - mdl: the imported geometry
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the new object
func NewImported(mdl model.Model, options ...GameObjectBuilderOption) GameObject {
	if mdl == nil {
		panic("game_object: nil model")
	}
	mats := make([]material.Material, 0, len(mdl.Materials())+1)
	for _, im := range mdl.Materials() {
		mats = append(mats, material.FromImported(im))
	}
	mats = append(mats, material.NewMaterial(material.WithRoughness(0.8)))
	return newGameObject(KindModel, mdl, mats, options)
}

func newGameObject(kind Kind, mdl model.Model, mats []material.Material, options []GameObjectBuilderOption) *gameObject {
	g := &gameObject{
		transform: transform{
			mu:    &sync.RWMutex{},
			scale: [3]float32{1, 1, 1},
		},
		kind:      kind,
		name:      common.Coalesce(mdl.Name(), string(kind)),
		mdl:       mdl,
		materials: mats,
	}
	g.enabled.Store(true)
	for _, option := range options {
		option(g)
	}
	return g
}

func (p *primitiveObject) Material() material.Material {
	return p.materials[0]
}

func (g *gameObject) Kind() Kind {
	return g.kind
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Materials() []material.Material {
	return g.materials
}

func (t *transform) Position() [3]float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.position
}

func (t *transform) SetPosition(position [3]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.position = position
}

func (t *transform) Rotation() [3]float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rotation
}

func (t *transform) SetRotation(rotation [3]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rotation = rotation
}

func (t *transform) Scale() [3]float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scale
}

func (t *transform) SetScale(scale [3]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scale = scale
}

func (t *transform) ModelMatrix() mgl32.Mat4 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return common.BuildModelMatrix(t.position, t.rotation, t.scale)
}

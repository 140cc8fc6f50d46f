package model

import (
	"github.com/chewxy/math32"
)

// Vertex is a single mesh vertex in model space.
type Vertex struct {
	// Position is the vertex position in model space.
	Position [3]float32

	// Normal is the unit surface normal used for lighting.
	Normal [3]float32

	// TexCoord is the UV texture coordinate.
	TexCoord [2]float32
}

// Mesh is one drawable primitive of a model: a triangle list and the index of the
// material it is shaded with.
type Mesh struct {
	// Vertices holds the vertex data.
	Vertices []Vertex

	// Indices holds triangle-list indices into Vertices.
	Indices []uint32

	// MaterialIndex is an index into the owning model's materials, or -1 for the default material.
	MaterialIndex int
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns a box that contains nothing; expanding it by a point yields that point.
func EmptyBounds() Bounds {
	inf := math32.Inf(1)
	return Bounds{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Expand returns the smallest box containing b and p.
//
// Parameters:
//   - p: the point to include
//
// Returns:
//   - Bounds: the expanded box
func (b Bounds) Expand(p [3]float32) Bounds {
	for i := range 3 {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	return b.Expand(o.Min).Expand(o.Max)
}

// Size returns the extent along each axis. An empty box has zero size.
func (b Bounds) Size() [3]float32 {
	if b.IsEmpty() {
		return [3]float32{}
	}
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Center returns the midpoint of the box. An empty box is centred on the origin.
func (b Bounds) Center() [3]float32 {
	if b.IsEmpty() {
		return [3]float32{}
	}
	return [3]float32{(b.Min[0] + b.Max[0]) / 2, (b.Min[1] + b.Max[1]) / 2, (b.Min[2] + b.Max[2]) / 2}
}

// MaxDimension returns the largest of the three extents.
func (b Bounds) MaxDimension() float32 {
	s := b.Size()
	return math32.Max(s[0], math32.Max(s[1], s[2]))
}

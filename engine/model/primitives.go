package model

import (
	"fmt"

	"github.com/chewxy/math32"
)

// PrimitiveKind names a built-in parametric shape.
type PrimitiveKind string

const (
	PrimitiveBox      PrimitiveKind = "box"
	PrimitiveSphere   PrimitiveKind = "sphere"
	PrimitiveCylinder PrimitiveKind = "cylinder"
	PrimitiveTorus    PrimitiveKind = "torus"
)

// PrimitiveKinds returns every built-in shape.
func PrimitiveKinds() []PrimitiveKind {
	return []PrimitiveKind{PrimitiveBox, PrimitiveSphere, PrimitiveCylinder, PrimitiveTorus}
}

// NewPrimitive builds the unit-sized model for a shape: a 1x1x1 box, a sphere of radius 0.5,
// a cylinder of radius 0.5 and height 1, and a torus of radius 0.5 with a 0.2 tube.
// All shapes are centred on the origin.
//
// Parameters:
//   - kind: the shape
//
// Returns:
//   - Model: the generated model
//   - error: error if the kind is not a built-in shape
func NewPrimitive(kind PrimitiveKind) (Model, error) {
	var mesh Mesh
	switch kind {
	case PrimitiveBox:
		mesh = Box(1, 1, 1)
	case PrimitiveSphere:
		mesh = Sphere(0.5, 32, 16)
	case PrimitiveCylinder:
		mesh = Cylinder(0.5, 1, 32)
	case PrimitiveTorus:
		mesh = Torus(0.5, 0.2, 16, 64)
	default:
		return nil, fmt.Errorf("unknown primitive %q", kind)
	}
	return NewModel(WithName(string(kind)), WithMeshes(mesh)), nil
}

// Box generates an axis-aligned box with one flat-shaded quad per face.
//
// Parameters:
//   - w, h, d: the extents along x, y and z
//
// Returns:
//   - Mesh: the box mesh
func Box(w, h, d float32) Mesh {
	hw, hh, hd := w/2, h/2, d/2
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{1, 0, 0}, [4][3]float32{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	mesh := Mesh{MaterialIndex: -1}
	for _, f := range faces {
		base := uint32(len(mesh.Vertices))
		for i, c := range f.corners {
			mesh.Vertices = append(mesh.Vertices, Vertex{Position: c, Normal: f.normal, TexCoord: uvs[i]})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

// Sphere generates a UV sphere.
//
// Parameters:
//   - radius: the sphere radius
//   - widthSegs: the number of segments around the equator (minimum 3)
//   - heightSegs: the number of segments from pole to pole (minimum 2)
//
// Returns:
//   - Mesh: the sphere mesh
func Sphere(radius float32, widthSegs, heightSegs int) Mesh {
	widthSegs = max(widthSegs, 3)
	heightSegs = max(heightSegs, 2)

	mesh := Mesh{MaterialIndex: -1}
	for y := 0; y <= heightSegs; y++ {
		v := float32(y) / float32(heightSegs)
		sinTheta, cosTheta := math32.Sincos(v * math32.Pi)
		for x := 0; x <= widthSegs; x++ {
			u := float32(x) / float32(widthSegs)
			sinPhi, cosPhi := math32.Sincos(u * 2 * math32.Pi)
			n := [3]float32{-cosPhi * sinTheta, cosTheta, sinPhi * sinTheta}
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
				TexCoord: [2]float32{u, v},
			})
		}
	}
	row := uint32(widthSegs + 1)
	for y := 0; y < heightSegs; y++ {
		for x := 0; x < widthSegs; x++ {
			a := uint32(y)*row + uint32(x) + 1
			b := uint32(y)*row + uint32(x)
			c := uint32(y+1)*row + uint32(x)
			d := uint32(y+1)*row + uint32(x) + 1
			if y != 0 {
				mesh.Indices = append(mesh.Indices, a, b, d)
			}
			if y != heightSegs-1 {
				mesh.Indices = append(mesh.Indices, b, c, d)
			}
		}
	}
	return mesh
}

// Cylinder generates a capped cylinder along the y axis.
//
// Parameters:
//   - radius: the cylinder radius
//   - height: the cylinder height
//   - radialSegs: the number of segments around the axis (minimum 3)
//
// Returns:
//   - Mesh: the cylinder mesh
func Cylinder(radius, height float32, radialSegs int) Mesh {
	radialSegs = max(radialSegs, 3)
	half := height / 2

	mesh := Mesh{MaterialIndex: -1}
	// side
	for y := range 2 {
		py := half - float32(y)*height
		for x := 0; x <= radialSegs; x++ {
			u := float32(x) / float32(radialSegs)
			s, c := math32.Sincos(u * 2 * math32.Pi)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{radius * s, py, radius * c},
				Normal:   [3]float32{s, 0, c},
				TexCoord: [2]float32{u, float32(y)},
			})
		}
	}
	row := uint32(radialSegs + 1)
	for x := range uint32(radialSegs) {
		a, b, c, d := x, row+x, row+x+1, x+1
		mesh.Indices = append(mesh.Indices, a, b, d, b, c, d)
	}

	// caps
	for _, top := range []bool{true, false} {
		ny := float32(1)
		py := half
		if !top {
			ny, py = -1, -half
		}
		center := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, Vertex{Position: [3]float32{0, py, 0}, Normal: [3]float32{0, ny, 0}, TexCoord: [2]float32{0.5, 0.5}})
		for x := 0; x <= radialSegs; x++ {
			s, c := math32.Sincos(float32(x) / float32(radialSegs) * 2 * math32.Pi)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: [3]float32{radius * s, py, radius * c},
				Normal:   [3]float32{0, ny, 0},
				TexCoord: [2]float32{s*0.5 + 0.5, c*0.5 + 0.5},
			})
		}
		for x := range uint32(radialSegs) {
			if top {
				mesh.Indices = append(mesh.Indices, center+1+x, center+2+x, center)
			} else {
				mesh.Indices = append(mesh.Indices, center+2+x, center+1+x, center)
			}
		}
	}
	return mesh
}

// Torus generates a torus lying in the xy plane, centred on the origin.
//
// Parameters:
//   - radius: the ring radius
//   - tube: the tube radius
//   - radialSegs: the number of segments around the tube (minimum 3)
//   - tubularSegs: the number of segments around the ring (minimum 3)
//
// Returns:
//   - Mesh: the torus mesh
func Torus(radius, tube float32, radialSegs, tubularSegs int) Mesh {
	radialSegs = max(radialSegs, 3)
	tubularSegs = max(tubularSegs, 3)

	mesh := Mesh{MaterialIndex: -1}
	for j := 0; j <= radialSegs; j++ {
		v := float32(j) / float32(radialSegs) * 2 * math32.Pi
		sinV, cosV := math32.Sincos(v)
		for i := 0; i <= tubularSegs; i++ {
			u := float32(i) / float32(tubularSegs) * 2 * math32.Pi
			sinU, cosU := math32.Sincos(u)
			center := [3]float32{radius * cosU, radius * sinU, 0}
			p := [3]float32{(radius + tube*cosV) * cosU, (radius + tube*cosV) * sinU, tube * sinV}
			n := [3]float32{p[0] - center[0], p[1] - center[1], p[2] - center[2]}
			l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: p,
				Normal:   [3]float32{n[0] / l, n[1] / l, n[2] / l},
				TexCoord: [2]float32{float32(i) / float32(tubularSegs), float32(j) / float32(radialSegs)},
			})
		}
	}
	row := uint32(tubularSegs + 1)
	for j := uint32(1); j <= uint32(radialSegs); j++ {
		for i := uint32(1); i <= uint32(tubularSegs); i++ {
			a := row*j + i - 1
			b := row*(j-1) + i - 1
			c := row*(j-1) + i
			d := row*j + i
			mesh.Indices = append(mesh.Indices, a, b, d, b, c, d)
		}
	}
	return mesh
}

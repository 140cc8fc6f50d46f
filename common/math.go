package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// The returned slice shares memory with the input.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// BuildModelMatrix constructs a model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll) and the result is T * R * S.
//
// Parameters:
//   - pos: translation in world space
//   - rot: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func BuildModelMatrix(pos, rot, scale [3]float32) mgl32.Mat4 {
	t := mgl32.Translate3D(pos[0], pos[1], pos[2])
	r := mgl32.HomogRotate3DY(rot[1]).Mul4(mgl32.HomogRotate3DX(rot[0])).Mul4(mgl32.HomogRotate3DZ(rot[2]))
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(r).Mul4(s)
}

// NormalMatrix returns the inverse-transpose of the model matrix, used to transform normals under non-uniform scale.
// A singular model matrix yields the identity.
//
// Parameters:
//   - model: the model matrix
//
// Returns:
//   - mgl32.Mat4: the normal matrix
func NormalMatrix(model mgl32.Mat4) mgl32.Mat4 {
	if math32.Abs(model.Det()) < 1e-12 {
		return mgl32.Ident4()
	}
	return model.Inv().Transpose()
}

// Perspective creates a perspective projection matrix mapping depth to the WebGPU clip range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2)
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = (near * far) / (near - far)
	return m
}

// Orthographic creates an orthographic projection matrix mapping depth to the WebGPU clip range [0, 1].
//
// Parameters:
//   - left, right, bottom, top: the view volume extents
//   - near, far: the depth range
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Orthographic(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	var m mgl32.Mat4
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = 1 / (near - far)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[14] = near / (near - far)
	m[15] = 1
	return m
}

// LookAt creates a view matrix that transforms world coordinates to camera space.
// When the view direction is parallel to up, an alternate up axis is used.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation
//
// Returns:
//   - mgl32.Mat4: the view matrix
func LookAt(eye, center, up [3]float32) mgl32.Mat4 {
	e := mgl32.Vec3(eye)
	c := mgl32.Vec3(center)
	u := mgl32.Vec3(up)
	dir := c.Sub(e)
	if dir.Len() < 1e-6 {
		dir = mgl32.Vec3{0, 0, -1}
	}
	if dir.Normalize().Cross(u.Normalize()).Len() < 1e-4 {
		u = mgl32.Vec3{0, 0, 1}
	}
	return mgl32.LookAtV(e, e.Add(dir), u)
}

// Normalize3 returns v scaled to unit length. The zero vector is returned unchanged.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the unit vector
func Normalize3(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

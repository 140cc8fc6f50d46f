package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexSize is the size in bytes of one marshalled Vertex.
const VertexSize = 32

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// VertexBufferLayout describes the Vertex layout to a render pipeline:
// position at location 0, normal at location 1, uv at location 2.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// MarshalVertices serializes vertices into a little-endian buffer for GPU upload.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices) * VertexSize bytes
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i, v := range vertices {
		off := i * VertexSize
		for j := range 3 {
			binary.LittleEndian.PutUint32(buf[off+j*4:], math.Float32bits(v.Position[j]))
			binary.LittleEndian.PutUint32(buf[off+12+j*4:], math.Float32bits(v.Normal[j]))
		}
		binary.LittleEndian.PutUint32(buf[off+24:], math.Float32bits(v.TexCoord[0]))
		binary.LittleEndian.PutUint32(buf[off+28:], math.Float32bits(v.TexCoord[1]))
	}
	return buf
}

// MarshalIndices serializes uint32 indices for GPU upload.
//
// Parameters:
//   - indices: the indices to serialize
//
// Returns:
//   - []byte: the index buffer
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

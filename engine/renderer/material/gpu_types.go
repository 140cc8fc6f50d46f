package material

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialSource is the WGSL definition of the MaterialParams struct. It matches GPUMaterialParams exactly.
const GPUMaterialSource = `struct MaterialParams {
    base_color: vec4<f32>,
    roughness: f32,
    metalness: f32,
    _pad: vec2<f32>,
}
`

// GPUMaterialParams is the GPU-aligned representation of a material's shading factors.
// Size: 32 bytes.
type GPUMaterialParams struct {
	BaseColor [4]float32 // offset  0: RGBA albedo
	Roughness float32    // offset 16
	Metalness float32    // offset 20
	_pad      [2]float32 // offset 24: padding to 32 bytes
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (32)
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.BaseColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Metalness))
	return buf
}

// ToGPU snapshots a material's shading factors.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - GPUMaterialParams: the GPU-aligned representation
func ToGPU(m Material) GPUMaterialParams {
	return GPUMaterialParams{
		BaseColor: m.BaseColor(),
		Roughness: m.Roughness(),
		Metalness: m.Metalness(),
	}
}

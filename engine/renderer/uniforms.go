package renderer

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// frameUniformSize matches the WGSL FrameUniform struct.
	frameUniformSize = 256
	// objectUniformSize matches the WGSL ObjectUniform struct: model, normal, MaterialParams.
	objectUniformSize = 160
	// lineVertexSize is a vec3 position followed by a vec3 color.
	lineVertexSize = 24
	// envIntensity scales decoded environment radiance in the lit shader.
	envIntensity float32 = 1
)

// frameSettings holds the renderer state that feeds the frame uniform.
type frameSettings struct {
	shadowMode  ShadowMode
	toneMapping ToneMapping
	exposure    float32
}

// marshalFrameUniform packs the per-frame uniform.
//
// Parameters:
//   - f: the frame snapshot
//   - s: the renderer settings
//   - shadowEnabled: whether a shadow map was rendered this frame
//
// Returns:
//   - []byte: frameUniformSize bytes matching FrameUniform
func marshalFrameUniform(f *Frame, s frameSettings, shadowEnabled bool) []byte {
	buf := make([]byte, frameUniformSize)
	putMat4(buf[0:], f.ViewProjection)
	putMat4(buf[64:], f.InverseViewProjection)
	putMat4(buf[128:], f.ShadowViewProjection)
	putVec3(buf[192:], f.CameraPosition)
	putU32(buf[204:], uint32(min(len(f.Lights), light.MaxGPULights)))
	putVec3(buf[208:], f.Ambient)
	putF32(buf[220:], s.exposure)
	putU32(buf[224:], uint32(s.toneMapping))
	putU32(buf[228:], uint32(s.shadowMode))
	putBool(buf[232:], f.Environment != nil)
	putF32(buf[236:], f.Environment.MaxLOD())
	putBool(buf[240:], f.Background != nil)
	putBool(buf[244:], shadowEnabled)
	putF32(buf[248:], light.DefaultShadowBias)
	putF32(buf[252:], envIntensity)
	return buf
}

// marshalObjectUniform packs the per-draw uniform.
//
// Parameters:
//   - modelMatrix: the model-to-world transform
//   - mat: the material of the drawn mesh
//
// Returns:
//   - []byte: objectUniformSize bytes matching ObjectUniform
func marshalObjectUniform(modelMatrix mgl32.Mat4, mat material.GPUMaterialParams) []byte {
	buf := make([]byte, objectUniformSize)
	putMat4(buf[0:], modelMatrix)
	putMat4(buf[64:], common.NormalMatrix(modelMatrix))
	copy(buf[128:], mat.Marshal())
	return buf
}

// marshalLineVertices expands segments into a LineList vertex buffer.
func marshalLineVertices(segments []light.Segment, color [3]float32) []byte {
	buf := make([]byte, len(segments)*2*lineVertexSize)
	off := 0
	for _, seg := range segments {
		for _, p := range seg {
			putVec3(buf[off:], p)
			putVec3(buf[off+12:], color)
			off += lineVertexSize
		}
	}
	return buf
}

// selectShadowCaster copies lights, keeping the shadow flag only on the first casting light.
// A single shadow map is rendered per frame; the shader samples it for that light alone.
//
// Parameters:
//   - lights: the packed lights
//
// Returns:
//   - []light.GPULight: the adjusted copy
//   - bool: true if some light casts shadows
func selectShadowCaster(lights []light.GPULight) ([]light.GPULight, bool) {
	out := make([]light.GPULight, len(lights))
	copy(out, lights)
	found := false
	for i := range out {
		if out[i].CastsShadows == 0 {
			continue
		}
		if found {
			out[i].CastsShadows = 0
			continue
		}
		found = true
	}
	return out, found
}

func putMat4(buf []byte, m mgl32.Mat4) {
	// mgl32 matrices are column-major, as WGSL expects
	for i, v := range m {
		putF32(buf[i*4:], v)
	}
}

func putVec3(buf []byte, v [3]float32) {
	for i := range 3 {
		putF32(buf[i*4:], v[i])
	}
}

func putF32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

func putU32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

func putBool(buf []byte, v bool) {
	if v {
		putU32(buf, 1)
	} else {
		putU32(buf, 0)
	}
}

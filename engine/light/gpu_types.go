package light

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
)

// MaxGPULights is the size of the fixed light array in the lights uniform buffer.
// Lights beyond the budget are dropped in registry order.
const MaxGPULights = 16

// GPULightSource is the WGSL definition of the Light struct. It matches GPULight exactly.
const GPULightSource = `struct Light {
    position: vec3<f32>,
    kind: u32,
    color: vec3<f32>,
    intensity: f32,
    direction: vec3<f32>,
    range: f32,
    cos_outer: f32,
    cos_inner: f32,
    casts_shadows: u32,
    _pad: u32,
}
`

// GPULight is the GPU-aligned representation of a single light source.
// Size: 64 bytes (WGSL uniform aligned).
type GPULight struct {
	Position     [3]float32 // offset  0: world-space position (point/spot/directional)
	Kind         uint32     // offset 12: Kind value
	Color        [3]float32 // offset 16: RGB color
	Intensity    float32    // offset 28: scalar multiplier
	Direction    [3]float32 // offset 32: normalized direction (directional/spot)
	Range        float32    // offset 44: attenuation cutoff, 0 = unlimited
	CosOuter     float32    // offset 48: cos(cone half-angle) for spot
	CosInner     float32    // offset 52: cos(half-angle where the penumbra begins) for spot
	CastsShadows uint32     // offset 56: 1 = casts shadows
	_pad         uint32     // offset 60: padding to 64 bytes
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 64)
	putVec3(buf[0:], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.Kind)
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	putVec3(buf[32:], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Range))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.CosOuter))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.CosInner))
	binary.LittleEndian.PutUint32(buf[56:60], g.CastsShadows)
	return buf
}

func putVec3(buf []byte, v [3]float32) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}

// ToGPULight converts a non-ambient Light into its GPU-aligned representation.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	g := GPULight{
		Kind:      uint32(l.Kind()),
		Color:     l.Color(),
		Intensity: l.Intensity(),
		Direction: [3]float32{0, -1, 0},
	}
	if p, ok := l.(Positioned); ok {
		g.Position = p.Position()
	}
	if t, ok := l.(Targeted); ok {
		g.Direction = t.Direction()
	}
	if r, ok := l.(Ranged); ok {
		g.Range = r.Range()
	}
	if c, ok := l.(Coned); ok {
		g.CosOuter = math32.Cos(c.Angle())
		g.CosInner = math32.Cos(c.Angle() * (1 - c.Penumbra()))
	}
	if s, ok := l.(ShadowCaster); ok && s.CastsShadows() {
		g.CastsShadows = 1
	}
	return g
}

// PackLights splits lights into the ambient term and the GPU light array.
// Ambient lights are summed as color * intensity. At most MaxGPULights remaining
// lights are packed, in the order given.
//
// Parameters:
//   - lights: the lights to pack
//
// Returns:
//   - []GPULight: the packed non-ambient lights
//   - [3]float32: the summed ambient color
func PackLights(lights []Light) ([]GPULight, [3]float32) {
	var ambient [3]float32
	packed := make([]GPULight, 0, min(len(lights), MaxGPULights))
	for _, l := range lights {
		if l.Kind() == KindAmbient {
			c, in := l.Color(), l.Intensity()
			for i := range 3 {
				ambient[i] += c[i] * in
			}
			continue
		}
		if len(packed) >= MaxGPULights {
			continue
		}
		packed = append(packed, ToGPULight(l))
	}
	return packed, ambient
}

// MarshalLightArray serializes lights into a fixed MaxGPULights * 64 byte buffer matching
// the WGSL `array<Light, 16>` uniform. Unused slots are zero.
//
// Parameters:
//   - lights: the packed lights
//
// Returns:
//   - []byte: the buffer ready for GPU upload
func MarshalLightArray(lights []GPULight) []byte {
	size := (&GPULight{}).Size()
	buf := make([]byte, MaxGPULights*size)
	for i := range min(len(lights), MaxGPULights) {
		copy(buf[i*size:], lights[i].Marshal())
	}
	return buf
}

// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Axis names one component of a 3-vector. It is used by transform edits that target a single slider.
type Axis int

const (
	// AxisX selects the first vector component.
	AxisX Axis = iota
	// AxisY selects the second vector component.
	AxisY
	// AxisZ selects the third vector component.
	AxisZ
)

// ParseAxis converts "x", "y" or "z" into an Axis.
//
// Parameters:
//   - s: the axis name
//
// Returns:
//   - Axis: the parsed axis
//   - bool: false if the name is not recognised
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "x", "X":
		return AxisX, true
	case "y", "Y":
		return AxisY, true
	case "z", "Z":
		return AxisZ, true
	}
	return 0, false
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "unknown"
}

// TextureStagingData holds pixel data for a texture binding pending GPU upload.
// Levels are optional mip levels following the base image; each level must be exactly
// half the size of the previous one (rounded down, minimum 1).
type TextureStagingData struct {
	// Pixels is the base level in RGBA8 format, 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the base level in pixels.
	Width uint32
	// Height is the height of the base level in pixels.
	Height uint32
	// Levels holds RGBA8 pixel data for mip levels 1..n.
	Levels [][]byte
	// Format overrides the texture format. Defaults to RGBA8Unorm.
	Format wgpu.TextureFormat
}

// MipLevelCount returns the number of mip levels including the base image.
//
// Returns:
//   - uint32: 1 + len(Levels)
func (t TextureStagingData) MipLevelCount() uint32 {
	return uint32(1 + len(t.Levels))
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers, used in shadow mapping.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// ImportedMaterial represents material properties from an imported model file.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the albedo/diffuse color (RGBA).
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32
}

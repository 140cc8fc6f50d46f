// Package environment turns equirectangular HDR panoramas into prefiltered environment maps used
// as the scene background and as image-based lighting.
package environment

import (
	"fmt"
)

// Preset names one of the selectable environments.
type Preset string

const (
	// PresetNone clears background and image-based lighting.
	PresetNone   Preset = "none"
	PresetStudio Preset = "studio"
	PresetSunset Preset = "sunset"
	PresetForest Preset = "forest"
	PresetCity   Preset = "city"
	PresetNight  Preset = "night"
)

// Presets returns every preset in display order, starting with PresetNone.
func Presets() []Preset {
	return []Preset{PresetNone, PresetStudio, PresetSunset, PresetForest, PresetCity, PresetNight}
}

// ParsePreset converts a preset name into a Preset.
//
// Parameters:
//   - s: the preset name
//
// Returns:
//   - Preset: the parsed preset
//   - error: error if the name is not a known preset
func ParsePreset(s string) (Preset, error) {
	for _, p := range Presets() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown environment preset %q", s)
}

// HDRImage is a linear-light RGB image with unbounded float components.
type HDRImage struct {
	Width  int
	Height int
	// Pix holds Width*Height RGB triples, row-major from the top-left.
	Pix []float32
}

// NewHDRImage allocates a black image.
func NewHDRImage(width, height int) *HDRImage {
	return &HDRImage{Width: width, Height: height, Pix: make([]float32, width*height*3)}
}

// At returns the RGB value of a pixel.
func (h *HDRImage) At(x, y int) [3]float32 {
	i := (y*h.Width + x) * 3
	return [3]float32{h.Pix[i], h.Pix[i+1], h.Pix[i+2]}
}

// Set stores the RGB value of a pixel.
func (h *HDRImage) Set(x, y int, c [3]float32) {
	i := (y*h.Width + x) * 3
	h.Pix[i], h.Pix[i+1], h.Pix[i+2] = c[0], c[1], c[2]
}

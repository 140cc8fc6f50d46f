package common

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHexColor converts a "#rrggbb" (or "#rgb") string into linear-agnostic RGB components in [0, 1].
// The components are returned exactly as encoded; no gamma conversion is applied.
//
// Parameters:
//   - hex: the hex color string
//
// Returns:
//   - [3]float32: the RGB components
//   - error: error if the string is not a valid hex color
func ParseHexColor(hex string) ([3]float32, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// FormatHexColor converts RGB components in [0, 1] into a lowercase "#rrggbb" string.
//
// Parameters:
//   - rgb: the RGB components
//
// Returns:
//   - string: the hex color string
func FormatHexColor(rgb [3]float32) string {
	c := colorful.Color{
		R: float64(Clamp(rgb[0], 0, 1)),
		G: float64(Clamp(rgb[1], 0, 1)),
		B: float64(Clamp(rgb[2], 0, 1)),
	}
	return c.Hex()
}

// NormalizeHexColor parses and re-formats a hex color so equal colors compare equal as strings.
//
// Parameters:
//   - hex: the hex color string
//
// Returns:
//   - string: the canonical "#rrggbb" form
//   - error: error if the string is not a valid hex color
func NormalizeHexColor(hex string) (string, error) {
	rgb, err := ParseHexColor(hex)
	if err != nil {
		return "", err
	}
	return FormatHexColor(rgb), nil
}

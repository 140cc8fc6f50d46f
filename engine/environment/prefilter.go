package environment

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
	"golang.org/x/image/draw"
)

// EncodeRange is the largest linear radiance representable in an encoded map.
// Texels store pow(min(v/EncodeRange, 1), 1/EncodeGamma) in 8-bit channels.
const EncodeRange float32 = 16

// EncodeGamma is the exponent used to spread 8-bit precision toward dark values.
const EncodeGamma float32 = 2.2

// MaxBaseWidth caps the width of the base level; larger panoramas are downscaled first.
const MaxBaseWidth = 1024

// ErrEmptyImage is returned when prefiltering an image with no pixels.
var ErrEmptyImage = errors.New("environment image has no pixels")

// Map is a prefiltered environment: a mip chain of encoded equirectangular images whose
// successive levels are increasingly blurred, so sampling a level approximates the
// reflection of a surface of matching roughness.
type Map struct {
	// Preset is the preset the map was built for.
	Preset Preset
	// Width and Height are the base level dimensions.
	Width, Height int
	// Levels holds RGBA8 pixels for each mip level, base first. Level i is max(1, w>>i) by max(1, h>>i).
	Levels [][]byte
	// Irradiance is the average linear radiance of the panorama, used as the diffuse
	// image-based lighting term.
	Irradiance [3]float32
}

// MaxLOD returns the index of the smallest mip level.
func (m *Map) MaxLOD() float32 {
	if m == nil || len(m.Levels) == 0 {
		return 0
	}
	return float32(len(m.Levels) - 1)
}

// Staging returns the map as texture upload data.
//
// Returns:
//   - common.TextureStagingData: the base level plus the remaining mip levels
func (m *Map) Staging() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: m.Levels[0],
		Width:  uint32(m.Width),
		Height: uint32(m.Height),
		Levels: m.Levels[1:],
	}
}

// Encode converts a linear radiance value into an 8-bit channel value.
func Encode(v float32) uint8 {
	v = common.Clamp(v/EncodeRange, 0, 1)
	return uint8(math32.Round(math32.Pow(v, 1/EncodeGamma) * 255))
}

// Decode converts an 8-bit channel value back into linear radiance.
func Decode(c uint8) float32 {
	return math32.Pow(float32(c)/255, EncodeGamma) * EncodeRange
}

// Prefilter builds the mip chain for a panorama. Each level is the previous level scaled to half
// size and blurred by a radius that grows with the level, down to a single texel.
// The context is checked between levels so superseded work stops early.
//
// Parameters:
//   - ctx: cancels the work
//   - preset: the preset being built
//   - src: the linear HDR panorama
//
// Returns:
//   - *Map: the prefiltered map
//   - error: ErrEmptyImage, or the context error if cancelled
func Prefilter(ctx context.Context, preset Preset, src *HDRImage) (*Map, error) {
	if src == nil || src.Width == 0 || src.Height == 0 {
		return nil, ErrEmptyImage
	}

	encoded := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
	var sum [3]float64
	for y := range src.Height {
		for x := range src.Width {
			c := src.At(x, y)
			i := encoded.PixOffset(x, y)
			encoded.Pix[i+0] = Encode(c[0])
			encoded.Pix[i+1] = Encode(c[1])
			encoded.Pix[i+2] = Encode(c[2])
			encoded.Pix[i+3] = 255
			for k := range 3 {
				sum[k] += float64(c[k])
			}
		}
	}
	n := float64(src.Width * src.Height)

	base := encoded
	if src.Width > MaxBaseWidth {
		h := max(1, src.Height*MaxBaseWidth/src.Width)
		base = scale(encoded, MaxBaseWidth, h)
	}

	m := &Map{
		Preset:     preset,
		Width:      base.Bounds().Dx(),
		Height:     base.Bounds().Dy(),
		Levels:     [][]byte{base.Pix},
		Irradiance: [3]float32{float32(sum[0] / n), float32(sum[1] / n), float32(sum[2] / n)},
	}

	prev := base
	for level := 1; ; level++ {
		w, h := max(1, m.Width>>level), max(1, m.Height>>level)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("prefilter cancelled at level %d: %w", level, err)
		}
		next := scale(prev, w, h)
		if w > 2 && h > 2 {
			next = blur.Gaussian(next, float64(level)*0.75)
		}
		m.Levels = append(m.Levels, next.Pix)
		prev = next
		if w == 1 && h == 1 {
			break
		}
	}
	return m, nil
}

// scale resizes src to w x h with bilinear filtering.
func scale(src *image.RGBA, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

package loader

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"

	"github.com/chewxy/math32"
	"github.com/mdouchement/hdr"
	_ "github.com/mdouchement/hdr/codec/rgbe"
)

// decodeEnvironmentImage decodes an equirectangular environment image into linear RGB.
// Radiance HDR files keep their full range; 8-bit images are converted from sRGB.
func decodeEnvironmentImage(r io.Reader) (*environment.HDRImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode environment image: %w", err)
	}

	b := img.Bounds()
	out := environment.NewHDRImage(b.Dx(), b.Dy())
	if out.Width == 0 || out.Height == 0 {
		return nil, fmt.Errorf("decode environment image: %w", environment.ErrEmptyImage)
	}

	if hi, ok := img.(hdr.Image); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				cr, cg, cb, _ := hi.HDRAt(x, y).HDRRGBA()
				out.Set(x-b.Min.X, y-b.Min.Y, [3]float32{float32(cr), float32(cg), float32(cb)})
			}
		}
		return out, nil
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			out.Set(x-b.Min.X, y-b.Min.Y, [3]float32{
				srgbToLinear(float32(cr) / 0xffff),
				srgbToLinear(float32(cg) / 0xffff),
				srgbToLinear(float32(cb) / 0xffff),
			})
		}
	}
	return out, nil
}

func srgbToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

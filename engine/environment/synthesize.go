package environment

import (
	"github.com/chewxy/math32"
)

// skyParams describes a procedural panorama: a vertical gradient with a sun disc.
type skyParams struct {
	zenith    [3]float32
	horizon   [3]float32
	ground    [3]float32
	sunDir    [3]float32
	sunColor  [3]float32
	sunRadius float32
}

var presetSkies = map[Preset]skyParams{
	PresetStudio: {
		zenith: [3]float32{0.9, 0.9, 0.92}, horizon: [3]float32{0.6, 0.6, 0.62}, ground: [3]float32{0.25, 0.25, 0.25},
		sunDir: [3]float32{0.3, 0.8, 0.5}, sunColor: [3]float32{12, 12, 12}, sunRadius: 0.25,
	},
	PresetSunset: {
		zenith: [3]float32{0.2, 0.3, 0.6}, horizon: [3]float32{1.6, 0.7, 0.3}, ground: [3]float32{0.15, 0.1, 0.08},
		sunDir: [3]float32{-0.8, 0.08, 0.6}, sunColor: [3]float32{14, 7, 3}, sunRadius: 0.06,
	},
	PresetForest: {
		zenith: [3]float32{0.35, 0.5, 0.7}, horizon: [3]float32{0.35, 0.45, 0.3}, ground: [3]float32{0.08, 0.12, 0.05},
		sunDir: [3]float32{0.4, 0.6, -0.7}, sunColor: [3]float32{6, 6, 4.5}, sunRadius: 0.05,
	},
	PresetCity: {
		zenith: [3]float32{0.45, 0.55, 0.75}, horizon: [3]float32{0.8, 0.8, 0.8}, ground: [3]float32{0.2, 0.2, 0.22},
		sunDir: [3]float32{0.6, 0.5, 0.6}, sunColor: [3]float32{10, 9.5, 9}, sunRadius: 0.04,
	},
	PresetNight: {
		zenith: [3]float32{0.005, 0.008, 0.02}, horizon: [3]float32{0.03, 0.04, 0.08}, ground: [3]float32{0.01, 0.01, 0.01},
		sunDir: [3]float32{-0.3, 0.7, -0.6}, sunColor: [3]float32{1.5, 1.6, 2}, sunRadius: 0.03,
	},
}

// Synthesize renders a procedural equirectangular panorama for a preset. It is used when no
// HDR file is configured for the preset.
//
// Parameters:
//   - preset: the preset
//   - width: the panorama width; the height is width/2
//
// Returns:
//   - *HDRImage: the panorama, or nil for PresetNone or an unknown preset
func Synthesize(preset Preset, width int) *HDRImage {
	p, ok := presetSkies[preset]
	if !ok || width < 2 {
		return nil
	}
	height := width / 2
	img := NewHDRImage(width, height)
	sun := normalize(p.sunDir)

	for y := range height {
		// latitude from +pi/2 at the top row to -pi/2 at the bottom
		lat := math32.Pi/2 - (float32(y)+0.5)/float32(height)*math32.Pi
		sinLat, cosLat := math32.Sincos(lat)
		for x := range width {
			lon := (float32(x)+0.5)/float32(width)*2*math32.Pi - math32.Pi
			sinLon, cosLon := math32.Sincos(lon)
			dir := [3]float32{cosLat * sinLon, sinLat, -cosLat * cosLon}

			var c [3]float32
			if sinLat >= 0 {
				t := math32.Pow(sinLat, 0.5)
				c = lerp(p.horizon, p.zenith, t)
			} else {
				c = lerp(p.horizon, p.ground, math32.Min(1, -sinLat*4))
			}

			cosSun := dir[0]*sun[0] + dir[1]*sun[1] + dir[2]*sun[2]
			if d := math32.Acos(math32.Min(1, cosSun)); d < p.sunRadius {
				f := 1 - d/p.sunRadius
				for i := range 3 {
					c[i] += p.sunColor[i] * f * f
				}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func lerp(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}

func normalize(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

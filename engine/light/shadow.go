package light

import (
	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapResolution is the width and height in texels of the shadow depth texture.
const ShadowMapResolution = 2048

// DefaultShadowHalfExtent is the orthographic half-extent (in world units) of the
// directional light shadow frustum, centred on the light's target.
const DefaultShadowHalfExtent float32 = 10.0

// DefaultShadowNear is the near plane of shadow projections.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the far plane of shadow projections.
const DefaultShadowFar float32 = 100.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.0015

// ShadowViewProjection builds the view-projection matrix used to render a light's shadow map.
// Directional lights use an orthographic frustum looking from position toward target; spot
// lights use a perspective frustum whose field of view covers the cone.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - mgl32.Mat4: the light view-projection matrix
//   - bool: false if the light kind cannot cast shadows or casting is disabled
func ShadowViewProjection(l Light) (mgl32.Mat4, bool) {
	caster, ok := l.(ShadowCaster)
	if !ok || !caster.CastsShadows() {
		return mgl32.Ident4(), false
	}
	t, ok := l.(Targeted)
	if !ok {
		return mgl32.Ident4(), false
	}

	pos := t.Position()
	target := t.Target()
	view := common.LookAt(pos, target, [3]float32{0, 1, 0})

	var proj mgl32.Mat4
	switch l.Kind() {
	case KindDirectional:
		e := DefaultShadowHalfExtent
		proj = common.Orthographic(-e, e, -e, e, DefaultShadowNear, DefaultShadowFar)
	case KindSpot:
		fov := math32.Pi / 3
		if c, ok := l.(Coned); ok {
			fov = 2 * c.Angle()
		}
		proj = common.Perspective(min(fov, 3), 1, DefaultShadowNear, DefaultShadowFar)
	default:
		return mgl32.Ident4(), false
	}
	return proj.Mul4(view), true
}

package light

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"
)

// Kind identifies the kind of light source.
type Kind int

const (
	// KindAmbient is a non-directional light that brightens every surface equally.
	// It has no position and never casts shadows.
	KindAmbient Kind = iota

	// KindDirectional is a light with parallel rays travelling from its position toward its target.
	// Used for distant sources like the sun. No distance attenuation.
	KindDirectional

	// KindPoint emits in all directions from a position and attenuates with distance.
	// Point lights never cast shadows.
	KindPoint

	// KindSpot emits in a cone from a position toward a target. Attenuates with distance
	// and with angle from the cone axis.
	KindSpot
)

var kindNames = [...]string{
	KindAmbient:     "ambient",
	KindDirectional: "directional",
	KindPoint:       "point",
	KindSpot:        "spot",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a kind name into a Kind.
//
// Parameters:
//   - s: the kind name ("ambient", "directional", "point", "spot")
//
// Returns:
//   - Kind: the parsed kind
//   - bool: false if the name is not a known kind
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Kinds returns every light kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindAmbient, KindDirectional, KindPoint, KindSpot}
}

// Light is the capability shared by every light source. Kind-specific capabilities are
// expressed by the Positioned, Targeted, ShadowCaster and Coned interfaces; a light only
// implements the ones its kind supports, so callers resolve them once with a type assertion.
type Light interface {
	// Kind returns the kind of light source.
	Kind() Kind

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - color: color as (r, g, b)
	SetColor(color [3]float32)

	// Intensity returns the scalar intensity multiplier.
	Intensity() float32

	// SetIntensity sets the scalar intensity multiplier. Negative values are stored as zero.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)
}

// Positioned is implemented by lights that have a world-space position.
type Positioned interface {
	Light

	// Position returns the world-space position of the light.
	Position() [3]float32

	// SetPosition sets the world-space position of the light.
	SetPosition(position [3]float32)
}

// Targeted is implemented by lights that point from their position toward a target.
type Targeted interface {
	Positioned

	// Target returns the world-space point the light aims at.
	Target() [3]float32

	// SetTarget sets the world-space point the light aims at.
	SetTarget(target [3]float32)

	// Direction returns the normalized direction from position to target.
	// When the two coincide the light points straight down.
	Direction() [3]float32
}

// ShadowCaster is implemented by lights that may render a shadow map.
type ShadowCaster interface {
	Light

	// CastsShadows returns whether shadow map generation is enabled for this light.
	CastsShadows() bool

	// SetCastsShadows enables or disables shadow map generation for this light.
	SetCastsShadows(castsShadows bool)
}

// Coned is implemented by spot lights.
type Coned interface {
	// Angle returns the cone half-angle in radians.
	Angle() float32

	// Penumbra returns the fraction of the cone attenuated at its edge, in [0, 1].
	Penumbra() float32
}

// Ranged is implemented by lights whose contribution fades to zero at a distance.
type Ranged interface {
	// Range returns the attenuation cutoff distance. Zero means unlimited.
	Range() float32
}

// base holds the state common to every kind. All accessors take the mutex because the
// render goroutine reads lights while the dispatcher goroutine edits them.
type base struct {
	mu        *sync.RWMutex
	kind      Kind
	color     [3]float32
	intensity float32
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Color() [3]float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.color
}

func (b *base) SetColor(color [3]float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.color = color
}

func (b *base) Intensity() float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.intensity
}

func (b *base) SetIntensity(intensity float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.intensity = math32.Max(intensity, 0)
}

type positioned struct {
	base
	position [3]float32
}

func (p *positioned) Position() [3]float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.position
}

func (p *positioned) SetPosition(position [3]float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = position
}

type targeted struct {
	positioned
	target       [3]float32
	castsShadows bool
}

func (t *targeted) Target() [3]float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.target
}

func (t *targeted) SetTarget(target [3]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.target = target
}

func (t *targeted) Direction() [3]float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d := [3]float32{
		t.target[0] - t.position[0],
		t.target[1] - t.position[1],
		t.target[2] - t.position[2],
	}
	l := math32.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if l < 1e-6 {
		return [3]float32{0, -1, 0}
	}
	return [3]float32{d[0] / l, d[1] / l, d[2] / l}
}

func (t *targeted) CastsShadows() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.castsShadows
}

func (t *targeted) SetCastsShadows(castsShadows bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.castsShadows = castsShadows
}

type ambientLight struct {
	base
}

type directionalLight struct {
	targeted
}

type pointLight struct {
	positioned
	lightRange float32
}

func (p *pointLight) Range() float32 {
	return p.lightRange
}

type spotLight struct {
	targeted
	angle      float32
	penumbra   float32
	lightRange float32
}

func (s *spotLight) Angle() float32 {
	return s.angle
}

func (s *spotLight) Penumbra() float32 {
	return s.penumbra
}

func (s *spotLight) Range() float32 {
	return s.lightRange
}

var (
	_ Light        = &ambientLight{}
	_ Targeted     = &directionalLight{}
	_ ShadowCaster = &directionalLight{}
	_ Positioned   = &pointLight{}
	_ Ranged       = &pointLight{}
	_ Targeted     = &spotLight{}
	_ ShadowCaster = &spotLight{}
	_ Coned        = &spotLight{}
	_ Ranged       = &spotLight{}
)

// NewLight creates a new Light of the specified kind with defaults and any provided options applied.
// Options naming a capability the kind does not have are ignored. The default color is white,
// the default intensity 1, the default target the origin, and the spot cone is pi/6 with a
// penumbra of 0.2.
//
// Parameters:
//   - kind: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(kind Kind, opts ...LightBuilderOption) Light {
	cfg := &lightConfig{
		color:     [3]float32{1, 1, 1},
		intensity: 1,
		angle:     math32.Pi / 6,
		penumbra:  0.2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	b := base{mu: &sync.RWMutex{}, kind: kind, color: cfg.color, intensity: math32.Max(cfg.intensity, 0)}
	switch kind {
	case KindAmbient:
		return &ambientLight{base: b}
	case KindDirectional:
		return &directionalLight{targeted: targeted{
			positioned:   positioned{base: b, position: cfg.position},
			target:       cfg.target,
			castsShadows: cfg.castsShadows,
		}}
	case KindPoint:
		return &pointLight{positioned: positioned{base: b, position: cfg.position}, lightRange: cfg.lightRange}
	case KindSpot:
		return &spotLight{
			targeted: targeted{
				positioned:   positioned{base: b, position: cfg.position},
				target:       cfg.target,
				castsShadows: cfg.castsShadows,
			},
			angle:      cfg.angle,
			penumbra:   min(max(cfg.penumbra, 0), 1),
			lightRange: cfg.lightRange,
		}
	}
	panic(fmt.Sprintf("light: unsupported kind %v", kind))
}

package light

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Segment is one line segment of helper geometry, in world space.
type Segment [2][3]float32

// Helper is a non-interactive line visualisation of a light's placement. It does not track
// the light automatically; Refresh must be called after the light's transform or color changes.
type Helper interface {
	// Light returns the light this helper visualises.
	Light() Light

	// Refresh rebuilds the geometry and color from the light's current state and bumps the version.
	Refresh()

	// Segments returns a copy of the current line geometry.
	Segments() []Segment

	// Color returns the line color, which follows the light's color.
	Color() [3]float32

	// Version increments on every Refresh. Renderers use it to skip re-uploading unchanged geometry.
	Version() uint64
}

type helperImpl struct {
	mu       *sync.RWMutex
	light    Light
	size     float32
	segments []Segment
	color    [3]float32
	version  uint64
}

var _ Helper = &helperImpl{}

// HelperBuilderOption is a functional option for configuring a Helper.
type HelperBuilderOption func(*helperImpl)

// WithHelperSize sets the world-space size of the helper glyph. Defaults to 0.5.
func WithHelperSize(size float32) HelperBuilderOption {
	return func(h *helperImpl) {
		if size > 0 {
			h.size = size
		}
	}
}

// NewHelper creates a helper for the light and builds its initial geometry.
//
// Parameters:
//   - l: the light to visualise
//   - opts: functional options
//
// Returns:
//   - Helper: the helper, or nil for ambient lights which have nothing to show
func NewHelper(l Light, opts ...HelperBuilderOption) Helper {
	if l == nil || l.Kind() == KindAmbient {
		return nil
	}
	h := &helperImpl{
		mu:    &sync.RWMutex{},
		light: l,
		size:  0.5,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Refresh()
	return h
}

func (h *helperImpl) Light() Light {
	return h.light
}

func (h *helperImpl) Refresh() {
	var segs []Segment
	switch h.light.Kind() {
	case KindDirectional:
		segs = h.directionalSegments()
	case KindPoint:
		segs = h.pointSegments()
	case KindSpot:
		segs = h.spotSegments()
	}
	color := h.light.Color()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.segments = segs
	h.color = color
	h.version++
}

func (h *helperImpl) Segments() []Segment {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Segment, len(h.segments))
	copy(out, h.segments)
	return out
}

func (h *helperImpl) Color() [3]float32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.color
}

func (h *helperImpl) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// directionalSegments draws a square facing the target plus a line to the target.
func (h *helperImpl) directionalSegments() []Segment {
	t := h.light.(Targeted)
	pos := mgl32.Vec3(t.Position())
	right, up := basis(mgl32.Vec3(t.Direction()))
	half := h.size

	corners := [4]mgl32.Vec3{
		pos.Add(right.Mul(-half)).Add(up.Mul(half)),
		pos.Add(right.Mul(half)).Add(up.Mul(half)),
		pos.Add(right.Mul(half)).Add(up.Mul(-half)),
		pos.Add(right.Mul(-half)).Add(up.Mul(-half)),
	}
	segs := make([]Segment, 0, 5)
	for i := range 4 {
		segs = append(segs, Segment{corners[i], corners[(i+1)%4]})
	}
	return append(segs, Segment{pos, t.Target()})
}

// pointSegments draws three orthogonal circles around the light.
func (h *helperImpl) pointSegments() []Segment {
	pos := mgl32.Vec3(h.light.(Positioned).Position())
	axes := [3][2]mgl32.Vec3{
		{{1, 0, 0}, {0, 1, 0}},
		{{0, 1, 0}, {0, 0, 1}},
		{{1, 0, 0}, {0, 0, 1}},
	}
	var segs []Segment
	for _, a := range axes {
		segs = append(segs, circle(pos, a[0], a[1], h.size, 24)...)
	}
	return segs
}

// spotSegments draws the cone from the light to its rim at the target distance.
func (h *helperImpl) spotSegments() []Segment {
	t := h.light.(Targeted)
	pos := mgl32.Vec3(t.Position())
	dir := mgl32.Vec3(t.Direction())
	dist := mgl32.Vec3(t.Target()).Sub(pos).Len()
	if r, ok := h.light.(Ranged); ok && r.Range() > 0 {
		dist = r.Range()
	}
	if dist < 1e-3 {
		dist = 1
	}
	angle := math32.Pi / 6
	if c, ok := h.light.(Coned); ok {
		angle = c.Angle()
	}
	radius := dist * math32.Tan(angle)
	center := pos.Add(dir.Mul(dist))
	right, up := basis(dir)

	segs := circle(center, right, up, radius, 32)
	for i := range 4 {
		s, c := math32.Sincos(float32(i) * math32.Pi / 2)
		rim := center.Add(right.Mul(c * radius)).Add(up.Mul(s * radius))
		segs = append(segs, Segment{pos, rim})
	}
	return segs
}

// basis returns two unit vectors perpendicular to dir and to each other.
func basis(dir mgl32.Vec3) (right, up mgl32.Vec3) {
	ref := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir.Dot(ref)) > 0.99 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	right = dir.Cross(ref).Normalize()
	up = right.Cross(dir).Normalize()
	return right, up
}

func circle(center, u, v mgl32.Vec3, radius float32, n int) []Segment {
	segs := make([]Segment, 0, n)
	point := func(i int) [3]float32 {
		s, c := math32.Sincos(2 * math32.Pi * float32(i) / float32(n))
		return center.Add(u.Mul(c * radius)).Add(v.Mul(s * radius))
	}
	for i := range n {
		segs = append(segs, Segment{point(i), point(i + 1)})
	}
	return segs
}

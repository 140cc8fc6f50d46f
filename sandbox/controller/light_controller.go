package controller

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// Defaults for new lights.
const (
	DefaultLightColor            = "#ffffff"
	DefaultLightIntensity float32 = 1
	DefaultSpotPenumbra   float32 = 0.2
)

// DefaultSpotAngle is the fixed cone half-angle of spot lights.
var DefaultSpotAngle = math32.Pi / 6

var defaultLightPositions = map[light.Kind][3]float32{
	light.KindDirectional: {5, 5, 5},
	light.KindPoint:       {2, 2, 2},
	light.KindSpot:        {2, 5, 2},
}

// LightRecord is the editable metadata of one light. Optional fields are nil for kinds
// that lack the property.
type LightRecord struct {
	ID         string      `json:"id" yaml:"id"`
	Kind       string      `json:"kind" yaml:"kind"`
	Color      string      `json:"color" yaml:"color"`
	Intensity  float32     `json:"intensity" yaml:"intensity"`
	Position   *[3]float32 `json:"position,omitempty" yaml:"position,omitempty"`
	Target     *[3]float32 `json:"target,omitempty" yaml:"target,omitempty"`
	CastShadow *bool       `json:"castShadow,omitempty" yaml:"cast_shadow,omitempty"`
	Angle      *float32    `json:"angle,omitempty" yaml:"angle,omitempty"`
	Penumbra   *float32    `json:"penumbra,omitempty" yaml:"penumbra,omitempty"`
	HelperID   string      `json:"helperId,omitempty" yaml:"-"`
}

// LightsView is the view-state of the lights panel.
type LightsView struct {
	Lights       []LightRecord `json:"lights"`
	Kinds        []string      `json:"kinds"`
	MaxIntensity float32       `json:"maxIntensity"`
}

// LightController owns the light records and their live lights and helpers.
type LightController struct {
	registry  LightRegistry
	container panel.Container
	ids       *IDGenerator

	records map[string]*LightRecord
	order   []string
}

// NewLightController creates a LightController that renders into the lights panel.
//
// Parameters:
//   - registry: the scene the lights live in
//   - host: resolves the lights panel
//
// Returns:
//   - *LightController: the controller
//   - error: panel.ErrMissingContainer if the host has no lights panel
func NewLightController(registry LightRegistry, host panel.Host) (*LightController, error) {
	if registry == nil || host == nil {
		panic("controller: NewLightController requires a registry and a host")
	}
	container, err := host.Container(panel.LightsContainer)
	if err != nil {
		return nil, fmt.Errorf("light controller: %w", err)
	}
	c := &LightController{
		registry:  registry,
		container: container,
		ids:       NewIDGenerator(),
		records:   make(map[string]*LightRecord),
	}
	c.render()
	return c, nil
}

// Add creates a light of kind with the default settings for that kind, plus its helper.
// It panics on an unknown kind.
//
// Parameters:
//   - kind: the light kind
//
// Returns:
//   - string: the new light id
//   - error: error if the registry rejects the light
func (c *LightController) Add(kind light.Kind) (string, error) {
	if _, ok := light.ParseKind(kind.String()); !ok {
		panic(fmt.Sprintf("controller: unknown light kind %v", kind))
	}
	id := c.ids.Next(kind.String())
	rgb, _ := common.ParseHexColor(DefaultLightColor)
	rec := &LightRecord{ID: id, Kind: kind.String(), Color: DefaultLightColor, Intensity: DefaultLightIntensity}
	opts := []light.LightBuilderOption{light.WithColor(rgb), light.WithIntensity(DefaultLightIntensity)}

	switch kind {
	case light.KindDirectional, light.KindSpot:
		pos := defaultLightPositions[kind]
		rec.Position = vec3Ptr(pos)
		rec.Target = vec3Ptr([3]float32{})
		rec.CastShadow = boolPtr(true)
		opts = append(opts, light.WithPosition(pos), light.WithTarget([3]float32{}), light.WithCastsShadows(true))
		if kind == light.KindSpot {
			rec.Angle = float32Ptr(DefaultSpotAngle)
			rec.Penumbra = float32Ptr(DefaultSpotPenumbra)
			opts = append(opts, light.WithCone(DefaultSpotAngle, DefaultSpotPenumbra))
		}
	case light.KindPoint:
		pos := defaultLightPositions[kind]
		rec.Position = vec3Ptr(pos)
		opts = append(opts, light.WithPosition(pos))
	}

	l := light.NewLight(kind, opts...)
	if _, err := c.registry.AddLight(id, l); err != nil {
		return "", fmt.Errorf("add light %s: %w", id, err)
	}
	if h := light.NewHelper(l); h != nil {
		if err := c.registry.AddHelper(id, h); err != nil {
			c.registry.RemoveLight(id)
			return "", fmt.Errorf("add helper for %s: %w", id, err)
		}
		rec.HelperID = id + "_helper"
	}

	c.records[id] = rec
	c.order = append(c.order, id)
	logger.Log.Debug("light added", zap.String("id", id))
	c.render()
	return id, nil
}

// Remove deletes the record, the live light and its helper together.
//
// Parameters:
//   - id: the light id
//
// Returns:
//   - bool: true if the light existed
func (c *LightController) Remove(id string) bool {
	if _, ok := c.records[id]; !ok {
		return false
	}
	c.registry.RemoveHelper(id)
	c.registry.RemoveLight(id)
	delete(c.records, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	logger.Log.Debug("light removed", zap.String("id", id))
	c.render()
	return true
}

// Clear removes every light.
func (c *LightController) Clear() {
	for _, id := range append([]string(nil), c.order...) {
		c.Remove(id)
	}
}

// SetColor sets the color from a "#rrggbb" string.
//
// Parameters:
//   - id: the light id
//   - hex: the color
//
// Returns:
//   - string: the previous color
//   - bool: false for stale ids and unparsable colors
func (c *LightController) SetColor(id, hex string) (string, bool) {
	rec, l, ok := c.lookup(id)
	if !ok {
		return "", false
	}
	norm, err := common.NormalizeHexColor(hex)
	if err != nil {
		return "", false
	}
	rgb, _ := common.ParseHexColor(norm)
	prev := rec.Color
	rec.Color = norm
	l.SetColor(rgb)
	c.refreshHelper(id)
	c.render()
	return prev, true
}

// SetIntensity sets the intensity, clamped to [0, intent.MaxIntensity].
//
// Parameters:
//   - id: the light id
//   - v: the intensity
//
// Returns:
//   - float32: the previous intensity
//   - bool: false for stale ids
func (c *LightController) SetIntensity(id string, v float32) (float32, bool) {
	rec, l, ok := c.lookup(id)
	if !ok {
		return 0, false
	}
	v = common.Clamp(v, 0, intent.MaxIntensity)
	prev := rec.Intensity
	rec.Intensity = v
	l.SetIntensity(v)
	c.refreshHelper(id)
	c.render()
	return prev, true
}

// SetPosition sets one axis of the position.
//
// Parameters:
//   - id: the light id
//   - axis: the axis
//   - v: the coordinate
//
// Returns:
//   - float32: the previous coordinate
//   - bool: false for stale ids and lights without a position
func (c *LightController) SetPosition(id string, axis common.Axis, v float32) (float32, bool) {
	rec, l, ok := c.lookup(id)
	if !ok || rec.Position == nil {
		return 0, false
	}
	p, ok := l.(light.Positioned)
	if !ok {
		return 0, false
	}
	prev := rec.Position[axis]
	rec.Position[axis] = v
	p.SetPosition(*rec.Position)
	c.refreshHelper(id)
	c.render()
	return prev, true
}

// SetCastShadow turns shadow casting on or off.
//
// Parameters:
//   - id: the light id
//   - on: whether the light casts shadows
//
// Returns:
//   - bool: the previous setting
//   - bool: false for stale ids and kinds that cannot cast shadows
func (c *LightController) SetCastShadow(id string, on bool) (bool, bool) {
	rec, l, ok := c.lookup(id)
	if !ok || rec.CastShadow == nil {
		return false, false
	}
	sc, ok := l.(light.ShadowCaster)
	if !ok {
		return false, false
	}
	prev := *rec.CastShadow
	*rec.CastShadow = on
	sc.SetCastsShadows(on)
	c.refreshHelper(id)
	c.render()
	return prev, true
}

// Record returns a copy of one record.
func (c *LightController) Record(id string) (LightRecord, bool) {
	rec, ok := c.records[id]
	if !ok {
		return LightRecord{}, false
	}
	var out LightRecord
	deepCopy(&out, rec)
	return out, true
}

// Records returns copies of every record in creation order.
func (c *LightController) Records() []LightRecord {
	src := make([]LightRecord, 0, len(c.order))
	for _, id := range c.order {
		src = append(src, *c.records[id])
	}
	var out []LightRecord
	deepCopy(&out, &src)
	return out
}

// Routes returns the intent handlers of the lights panel.
func (c *LightController) Routes() map[string]intent.Handler {
	return map[string]intent.Handler{
		intent.RouteLightAdd: func(in intent.Intent) (intent.Intent, error) {
			kind, ok := light.ParseKind(in.(intent.LightAdd).Kind)
			if !ok {
				return nil, fmt.Errorf("%w: light kind %q", intent.ErrInvalidIntent, in.(intent.LightAdd).Kind)
			}
			_, err := c.Add(kind)
			return nil, err
		},
		intent.RouteLightRemove: func(in intent.Intent) (intent.Intent, error) {
			c.Remove(in.(intent.LightRemove).ID)
			return nil, nil
		},
		intent.RouteLightColor: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.LightColor)
			prev, ok := c.SetColor(v.ID, v.Color)
			if !ok {
				return nil, nil
			}
			return intent.LightColor{ID: v.ID, Color: prev}, nil
		},
		intent.RouteLightIntensity: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.LightIntensity)
			prev, ok := c.SetIntensity(v.ID, v.Value)
			if !ok {
				return nil, nil
			}
			return intent.LightIntensity{ID: v.ID, Value: prev}, nil
		},
		intent.RouteLightPosition: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.LightPosition)
			axis, ok := common.ParseAxis(v.Axis)
			if !ok {
				return nil, fmt.Errorf("%w: axis %q", intent.ErrInvalidIntent, v.Axis)
			}
			prev, ok := c.SetPosition(v.ID, axis, v.Value)
			if !ok {
				return nil, nil
			}
			return intent.LightPosition{ID: v.ID, Axis: v.Axis, Value: prev}, nil
		},
		intent.RouteLightShadow: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.LightShadow)
			prev, ok := c.SetCastShadow(v.ID, v.Enabled)
			if !ok {
				return nil, nil
			}
			return intent.LightShadow{ID: v.ID, Enabled: prev}, nil
		},
	}
}

func (c *LightController) lookup(id string) (*LightRecord, light.Light, bool) {
	rec, ok := c.records[id]
	if !ok {
		return nil, nil, false
	}
	l, ok := c.registry.Light(id)
	if !ok {
		return nil, nil, false
	}
	return rec, l, true
}

func (c *LightController) refreshHelper(id string) {
	if h, ok := c.registry.Helper(id); ok {
		h.Refresh()
	}
}

func (c *LightController) render() {
	view := LightsView{MaxIntensity: intent.MaxIntensity}
	view.Lights = c.Records()
	if view.Lights == nil {
		view.Lights = []LightRecord{}
	}
	for _, k := range light.Kinds() {
		view.Kinds = append(view.Kinds, k.String())
	}
	c.container.Render(view)
}

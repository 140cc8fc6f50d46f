package controller

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"go.uber.org/zap"
)

// Defaults for new primitives.
const (
	DefaultObjectColor               = "#4488ff"
	DefaultObjectRoughness   float32 = 0.5
	DefaultObjectMetalness   float32 = 0.2
	DefaultSpawnHeight       float32 = 0.5
	DefaultSpawnRadius       float32 = 2
	DefaultMaxModelDimension float32 = 5
)

// MaterialRecord is the editable material of a primitive.
type MaterialRecord struct {
	Color     string  `json:"color" yaml:"color"`
	Roughness float32 `json:"roughness" yaml:"roughness"`
	Metalness float32 `json:"metalness" yaml:"metalness"`
}

// ObjectRecord is the editable metadata of one object. Material is nil for imported models.
type ObjectRecord struct {
	ID       string          `json:"id" yaml:"id"`
	Kind     string          `json:"kind" yaml:"kind"`
	Name     string          `json:"name" yaml:"name"`
	Position [3]float32      `json:"position" yaml:"position"`
	Rotation [3]float32      `json:"rotation" yaml:"rotation"`
	Scale    [3]float32      `json:"scale" yaml:"scale"`
	Material *MaterialRecord `json:"material,omitempty" yaml:"material,omitempty"`
}

// ObjectsView is the view-state of the objects panel.
type ObjectsView struct {
	Objects []ObjectRecord `json:"objects"`
	Kinds   []string       `json:"kinds"`
	Accept  []string       `json:"accept"`
}

// ObjectController owns the object records, their live objects and the resources of
// imported models.
type ObjectController struct {
	registry  ObjectRegistry
	container panel.Container
	notices   *panel.Notifier
	loader    ModelLoader
	ids       *IDGenerator

	ctx          context.Context
	post         PostFunc
	rng          *rand.Rand
	spawnRadius  float32
	maxDimension float32
	sched        panel.Scheduler
	errorTimeout time.Duration

	records   map[string]*ObjectRecord
	resources map[string]*loader.Resource
	order     []string
	imports   int
}

// NewObjectController creates an ObjectController that renders into the objects panel.
//
// Parameters:
//   - registry: the scene the objects live in
//   - host: resolves the objects panel
//   - ldr: loads imported models
//   - options: controller options
//
// Returns:
//   - *ObjectController: the controller
//   - error: panel.ErrMissingContainer if the host has no objects panel
func NewObjectController(registry ObjectRegistry, host panel.Host, ldr ModelLoader, options ...ObjectControllerOption) (*ObjectController, error) {
	if registry == nil || host == nil || ldr == nil {
		panic("controller: NewObjectController requires a registry, a host and a loader")
	}
	container, err := host.Container(panel.ObjectsContainer)
	if err != nil {
		return nil, fmt.Errorf("object controller: %w", err)
	}
	c := &ObjectController{
		registry:     registry,
		container:    container,
		loader:       ldr,
		ids:          NewIDGenerator(),
		ctx:          context.Background(),
		post:         runInline,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		spawnRadius:  DefaultSpawnRadius,
		maxDimension: DefaultMaxModelDimension,
		sched:        panel.RealScheduler,
		errorTimeout: 5 * time.Second,
		records:      make(map[string]*ObjectRecord),
		resources:    make(map[string]*loader.Resource),
	}
	for _, opt := range options {
		opt(c)
	}
	c.notices = panel.NewNotifier(container, c.sched, c.errorTimeout)
	c.render()
	return c, nil
}

// AddPrimitive creates a primitive at a random x/z position within the spawn radius, with
// the default material. It panics on an unknown or non-primitive kind.
//
// Parameters:
//   - kind: the shape
//
// Returns:
//   - string: the new object id
//   - error: error if the registry rejects the object
func (c *ObjectController) AddPrimitive(kind game_object.Kind) (string, error) {
	if k, ok := game_object.ParseKind(string(kind)); !ok || !k.IsPrimitive() {
		panic(fmt.Sprintf("controller: unknown primitive kind %q", kind))
	}
	id := c.ids.Next(string(kind))
	pos := [3]float32{c.spawnOffset(), DefaultSpawnHeight, c.spawnOffset()}
	rgb, _ := common.ParseHexColor(DefaultObjectColor)
	mat := material.NewMaterial(
		material.WithName(id),
		material.WithColor(rgb),
		material.WithRoughness(DefaultObjectRoughness),
		material.WithMetalness(DefaultObjectMetalness),
	)
	obj := game_object.NewPrimitive(kind, mat, game_object.WithName(id), game_object.WithPosition(pos))
	if _, err := c.registry.AddObject(id, obj); err != nil {
		return "", fmt.Errorf("add object %s: %w", id, err)
	}

	c.records[id] = &ObjectRecord{
		ID:       id,
		Kind:     string(kind),
		Name:     id,
		Position: pos,
		Scale:    [3]float32{1, 1, 1},
		Material: &MaterialRecord{
			Color:     DefaultObjectColor,
			Roughness: DefaultObjectRoughness,
			Metalness: DefaultObjectMetalness,
		},
	}
	c.order = append(c.order, id)
	logger.Log.Debug("primitive added", zap.String("id", id))
	c.render()
	return id, nil
}

// Import loads an uploaded model in the background. A loading notice tracks its progress.
// On failure the notice turns into an error and the resource is released; on success the
// model is scaled down to the maximum dimension if needed, centred on x/z, rested on y = 0
// and registered.
//
// Parameters:
//   - res: the uploaded model file; the controller owns it from now on
func (c *ObjectController) Import(res *loader.Resource) {
	c.imports++
	noticeID := fmt.Sprintf("import_%d", c.imports)
	name := res.Name()
	c.notices.Loading(noticeID, fmt.Sprintf("Loading %s", name), 0)

	c.loader.LoadModel(c.ctx, res.Path(), loader.ModelCallbacks{
		OnProgress: func(p float32) {
			c.post(func() {
				c.notices.Loading(noticeID, fmt.Sprintf("Loading %s (%d%%)", name, int(common.Clamp(p, 0, 1)*100)), p)
			})
		},
		OnLoad: func(m model.Model) {
			c.deliver(res, func() { c.finishImport(noticeID, res, m) })
		},
		OnError: func(err error) {
			c.deliver(res, func() {
				res.Release()
				logger.Log.Warn("model import failed", zap.String("file", name), zap.Error(err))
				c.notices.Fail(noticeID, fmt.Sprintf("Failed to load %s: %v", name, err))
			})
		},
	})
}

// deliver posts an import completion. When the owning goroutine has stopped the completion
// never runs, so the resource is released here instead.
func (c *ObjectController) deliver(res *loader.Resource, f func()) {
	if err := c.post(f); err != nil {
		res.Release()
		logger.Log.Debug("import completion dropped", zap.String("file", res.Name()), zap.Error(err))
	}
}

func (c *ObjectController) finishImport(noticeID string, res *loader.Resource, m model.Model) {
	id := c.ids.Next(string(game_object.KindModel))
	pos, scale := FitModel(m.Bounds(), c.maxDimension)
	name := common.Coalesce(m.Name(), strings.TrimSuffix(res.Name(), filepath.Ext(res.Name())))

	obj := game_object.NewImported(m, game_object.WithName(name), game_object.WithPosition(pos), game_object.WithScale(scale))
	if _, err := c.registry.AddObject(id, obj); err != nil {
		res.Release()
		c.notices.Fail(noticeID, fmt.Sprintf("Failed to add %s: %v", name, err))
		return
	}
	c.records[id] = &ObjectRecord{
		ID:       id,
		Kind:     string(game_object.KindModel),
		Name:     name,
		Position: pos,
		Scale:    scale,
	}
	c.resources[id] = res
	c.order = append(c.order, id)
	c.notices.Done(noticeID)
	logger.Log.Info("model imported", zap.String("id", id), zap.String("name", name), zap.Int("triangles", m.TriangleCount()))
	c.render()
}

// FitModel returns the position and uniform scale that place a model with bounds b so its
// largest dimension is at most maxDim, it is centred on x/z and its bottom rests on y = 0.
// Models already within maxDim keep scale 1.
//
// Parameters:
//   - b: the model-space bounds
//   - maxDim: the largest allowed dimension
//
// Returns:
//   - [3]float32: the position
//   - [3]float32: the scale
func FitModel(b model.Bounds, maxDim float32) ([3]float32, [3]float32) {
	if b.IsEmpty() {
		return [3]float32{}, [3]float32{1, 1, 1}
	}
	s := float32(1)
	if d := b.MaxDimension(); d > maxDim && d > 0 {
		s = maxDim / d
	}
	center := b.Center()
	return [3]float32{-center[0] * s, -b.Min[1] * s, -center[2] * s}, [3]float32{s, s, s}
}

// Remove deletes the record and the live object, and releases an imported model's resource.
//
// Parameters:
//   - id: the object id
//
// Returns:
//   - bool: true if the object existed
func (c *ObjectController) Remove(id string) bool {
	if _, ok := c.records[id]; !ok {
		return false
	}
	c.registry.RemoveObject(id)
	if res, ok := c.resources[id]; ok {
		res.Release()
		delete(c.resources, id)
	}
	delete(c.records, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	logger.Log.Debug("object removed", zap.String("id", id))
	c.render()
	return true
}

// Close releases the resources of every imported model without touching the scene or the
// panel. It is called once the controller's goroutine has stopped.
func (c *ObjectController) Close() {
	for id, res := range c.resources {
		res.Release()
		delete(c.resources, id)
	}
}

// Clear removes every object.
func (c *ObjectController) Clear() {
	for _, id := range append([]string(nil), c.order...) {
		c.Remove(id)
	}
}

// SetPosition sets one axis of the position.
//
// Returns:
//   - float32: the previous value
//   - bool: false for stale ids
func (c *ObjectController) SetPosition(id string, axis common.Axis, v float32) (float32, bool) {
	return c.setTransform(id, axis, v,
		func(r *ObjectRecord) *[3]float32 { return &r.Position },
		game_object.GameObject.SetPosition)
}

// SetRotation sets one Euler angle in radians.
//
// Returns:
//   - float32: the previous value
//   - bool: false for stale ids
func (c *ObjectController) SetRotation(id string, axis common.Axis, v float32) (float32, bool) {
	return c.setTransform(id, axis, v,
		func(r *ObjectRecord) *[3]float32 { return &r.Rotation },
		game_object.GameObject.SetRotation)
}

// SetScale sets one axis of the scale.
//
// Returns:
//   - float32: the previous value
//   - bool: false for stale ids
func (c *ObjectController) SetScale(id string, axis common.Axis, v float32) (float32, bool) {
	return c.setTransform(id, axis, v,
		func(r *ObjectRecord) *[3]float32 { return &r.Scale },
		game_object.GameObject.SetScale)
}

func (c *ObjectController) setTransform(id string, axis common.Axis, v float32, field func(*ObjectRecord) *[3]float32, apply func(game_object.GameObject, [3]float32)) (float32, bool) {
	rec, obj, ok := c.lookup(id)
	if !ok {
		return 0, false
	}
	vec := field(rec)
	prev := vec[axis]
	*vec = common.WithAxis(*vec, axis, v)
	apply(obj, *vec)
	c.render()
	return prev, true
}

// SetColor sets a primitive's color from a "#rrggbb" string.
//
// Returns:
//   - string: the previous color
//   - bool: false for stale ids, models and unparsable colors
func (c *ObjectController) SetColor(id, hex string) (string, bool) {
	rec, mat, ok := c.lookupMaterial(id)
	if !ok {
		return "", false
	}
	norm, err := common.NormalizeHexColor(hex)
	if err != nil {
		return "", false
	}
	rgb, _ := common.ParseHexColor(norm)
	prev := rec.Material.Color
	rec.Material.Color = norm
	mat.SetColor(rgb)
	c.render()
	return prev, true
}

// SetRoughness sets a primitive's roughness, clamped to [0, 1].
//
// Returns:
//   - float32: the previous value
//   - bool: false for stale ids and models
func (c *ObjectController) SetRoughness(id string, v float32) (float32, bool) {
	rec, mat, ok := c.lookupMaterial(id)
	if !ok {
		return 0, false
	}
	v = common.Clamp(v, 0, 1)
	prev := rec.Material.Roughness
	rec.Material.Roughness = v
	mat.SetRoughness(v)
	c.render()
	return prev, true
}

// SetMetalness sets a primitive's metalness, clamped to [0, 1].
//
// Returns:
//   - float32: the previous value
//   - bool: false for stale ids and models
func (c *ObjectController) SetMetalness(id string, v float32) (float32, bool) {
	rec, mat, ok := c.lookupMaterial(id)
	if !ok {
		return 0, false
	}
	v = common.Clamp(v, 0, 1)
	prev := rec.Material.Metalness
	rec.Material.Metalness = v
	mat.SetMetalness(v)
	c.render()
	return prev, true
}

// Record returns a copy of one record.
func (c *ObjectController) Record(id string) (ObjectRecord, bool) {
	rec, ok := c.records[id]
	if !ok {
		return ObjectRecord{}, false
	}
	var out ObjectRecord
	deepCopy(&out, rec)
	return out, true
}

// Records returns copies of every record in creation order.
func (c *ObjectController) Records() []ObjectRecord {
	src := make([]ObjectRecord, 0, len(c.order))
	for _, id := range c.order {
		src = append(src, *c.records[id])
	}
	var out []ObjectRecord
	deepCopy(&out, &src)
	return out
}

// Routes returns the intent handlers of the objects panel.
func (c *ObjectController) Routes() map[string]intent.Handler {
	axisEdit := func(set func(string, common.Axis, float32) (float32, bool), back func(id, axis string, v float32) intent.Intent) intent.Handler {
		return func(in intent.Intent) (intent.Intent, error) {
			var id, axisName string
			var v float32
			switch e := in.(type) {
			case intent.ObjectPosition:
				id, axisName, v = e.ID, e.Axis, e.Value
			case intent.ObjectRotation:
				id, axisName, v = e.ID, e.Axis, e.Value
			case intent.ObjectScale:
				id, axisName, v = e.ID, e.Axis, e.Value
			}
			axis, ok := common.ParseAxis(axisName)
			if !ok {
				return nil, fmt.Errorf("%w: axis %q", intent.ErrInvalidIntent, axisName)
			}
			prev, ok := set(id, axis, v)
			if !ok {
				return nil, nil
			}
			return back(id, axisName, prev), nil
		}
	}

	return map[string]intent.Handler{
		intent.RouteObjectAdd: func(in intent.Intent) (intent.Intent, error) {
			kind, ok := game_object.ParseKind(in.(intent.ObjectAdd).Kind)
			if !ok || !kind.IsPrimitive() {
				return nil, fmt.Errorf("%w: primitive kind %q", intent.ErrInvalidIntent, in.(intent.ObjectAdd).Kind)
			}
			_, err := c.AddPrimitive(kind)
			return nil, err
		},
		intent.RouteObjectImport: func(in intent.Intent) (intent.Intent, error) {
			res := in.(intent.ObjectImport).Resource
			if res == nil {
				return nil, fmt.Errorf("%w: import without a file", intent.ErrInvalidIntent)
			}
			c.Import(res)
			return nil, nil
		},
		intent.RouteObjectRemove: func(in intent.Intent) (intent.Intent, error) {
			c.Remove(in.(intent.ObjectRemove).ID)
			return nil, nil
		},
		intent.RouteObjectPosition: axisEdit(c.SetPosition, func(id, axis string, v float32) intent.Intent {
			return intent.ObjectPosition{ID: id, Axis: axis, Value: v}
		}),
		intent.RouteObjectRotation: axisEdit(c.SetRotation, func(id, axis string, v float32) intent.Intent {
			return intent.ObjectRotation{ID: id, Axis: axis, Value: v}
		}),
		intent.RouteObjectScale: axisEdit(c.SetScale, func(id, axis string, v float32) intent.Intent {
			return intent.ObjectScale{ID: id, Axis: axis, Value: v}
		}),
		intent.RouteObjectColor: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.ObjectColor)
			prev, ok := c.SetColor(v.ID, v.Color)
			if !ok {
				return nil, nil
			}
			return intent.ObjectColor{ID: v.ID, Color: prev}, nil
		},
		intent.RouteObjectRoughness: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.ObjectRoughness)
			prev, ok := c.SetRoughness(v.ID, v.Value)
			if !ok {
				return nil, nil
			}
			return intent.ObjectRoughness{ID: v.ID, Value: prev}, nil
		},
		intent.RouteObjectMetalness: func(in intent.Intent) (intent.Intent, error) {
			v := in.(intent.ObjectMetalness)
			prev, ok := c.SetMetalness(v.ID, v.Value)
			if !ok {
				return nil, nil
			}
			return intent.ObjectMetalness{ID: v.ID, Value: prev}, nil
		},
	}
}

func (c *ObjectController) spawnOffset() float32 {
	return (c.rng.Float32()*2 - 1) * c.spawnRadius
}

func (c *ObjectController) lookup(id string) (*ObjectRecord, game_object.GameObject, bool) {
	rec, ok := c.records[id]
	if !ok {
		return nil, nil, false
	}
	obj, ok := c.registry.Object(id)
	if !ok {
		return nil, nil, false
	}
	return rec, obj, true
}

func (c *ObjectController) lookupMaterial(id string) (*ObjectRecord, material.Material, bool) {
	rec, obj, ok := c.lookup(id)
	if !ok || rec.Material == nil {
		return nil, nil, false
	}
	shaded, ok := obj.(game_object.Shaded)
	if !ok {
		return nil, nil, false
	}
	return rec, shaded.Material(), true
}

func (c *ObjectController) render() {
	view := ObjectsView{Objects: c.Records(), Accept: []string{".glb", ".gltf"}}
	if view.Objects == nil {
		view.Objects = []ObjectRecord{}
	}
	for _, k := range game_object.PrimitiveKinds() {
		view.Kinds = append(view.Kinds, string(k))
	}
	c.container.Render(view)
}

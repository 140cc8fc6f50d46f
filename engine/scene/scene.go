package scene

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/camera"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/material"
)

// ErrDuplicateID is returned when an entity is added under an identifier that is already live.
var ErrDuplicateID = errors.New("duplicate id")

// Surface is the area the scene renders into.
type Surface interface {
	// Size returns the logical width and height.
	Size() (width, height int)

	// PixelRatio returns the number of framebuffer pixels per logical unit.
	PixelRatio() float32
}

// Scene is the registry of live lights, objects and light helpers, keyed by identifier.
// Lights and objects are separate identifier categories; helpers are keyed by the id of
// the light they visualise. Thread-safe for concurrent access: the render goroutine reads
// the registry while the dispatcher goroutine mutates it.
type Scene interface {
	// Name returns the scene's name.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// AddLight registers a light under id. An existing entry is never overwritten.
	//
	// Parameters:
	//   - id: the light identifier
	//   - l: the light to register
	//
	// Returns:
	//   - light.Light: the registered light
	//   - error: ErrDuplicateID if id is already registered
	AddLight(id string, l light.Light) (light.Light, error)

	// RemoveLight removes the light registered under id.
	//
	// Parameters:
	//   - id: the light identifier
	//
	// Returns:
	//   - bool: true if an entry existed and was removed
	RemoveLight(id string) bool

	// Light returns the light registered under id.
	Light(id string) (light.Light, bool)

	// LightIDs returns the registered light ids sorted by kind tag, then by numeric counter
	// within a kind (spot_2 before spot_10).
	LightIDs() []string

	// AddObject registers an object under id. An existing entry is never overwritten.
	//
	// Parameters:
	//   - id: the object identifier
	//   - obj: the object to register
	//
	// Returns:
	//   - game_object.GameObject: the registered object
	//   - error: ErrDuplicateID if id is already registered
	AddObject(id string, obj game_object.GameObject) (game_object.GameObject, error)

	// RemoveObject removes the object registered under id.
	//
	// Returns:
	//   - bool: true if an entry existed and was removed
	RemoveObject(id string) bool

	// Object returns the object registered under id.
	Object(id string) (game_object.GameObject, bool)

	// ObjectIDs returns the registered object ids sorted by kind tag, then by numeric counter
	// within a kind.
	ObjectIDs() []string

	// AddHelper registers the helper visualising the light lightID.
	//
	// Parameters:
	//   - lightID: the id of the light the helper belongs to
	//   - h: the helper
	//
	// Returns:
	//   - error: ErrDuplicateID if the light already has a helper
	AddHelper(lightID string, h light.Helper) error

	// RemoveHelper removes the helper of the light lightID.
	RemoveHelper(lightID string) bool

	// Helper returns the helper of the light lightID.
	Helper(lightID string) (light.Helper, bool)

	// SetBackground sets the map drawn behind the scene. Nil clears it.
	SetBackground(m *environment.Map)

	// Background returns the current background map, or nil.
	Background() *environment.Map

	// SetEnvironment sets the map used for image-based lighting. Nil clears it.
	SetEnvironment(m *environment.Map)

	// Environment returns the current lighting environment map, or nil.
	Environment() *environment.Map

	// Update advances camera damping, snapshots the registry and renders exactly one frame.
	// It never mutates the registry.
	//
	// Parameters:
	//   - dt: seconds since the previous update
	//
	// Returns:
	//   - error: the render error, if any
	Update(dt float32) error

	// HandleResize reads the surface size and pixel ratio, updates the camera aspect and
	// resizes the renderer. Called at construction and on every resize.
	HandleResize()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name    string
	surface Surface
	cam     camera.Camera
	r       renderer.Renderer

	lights  map[string]light.Light
	objects map[string]game_object.GameObject
	helpers map[string]light.Helper

	background  *environment.Map
	environment *environment.Map
}

var _ Scene = &scene{}

// NewScene creates a Scene rendering into surface through r, viewed through cam.
// Panics if any collaborator is nil. HandleResize is called before returning.
//
// Parameters:
//   - name: the name of the scene
//   - surface: the render surface (must not be nil)
//   - cam: the camera (must not be nil)
//   - r: the renderer (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, surface Surface, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if surface == nil {
		panic("scene: NewScene requires a non-nil Surface")
	}
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:      &sync.RWMutex{},
		name:    name,
		surface: surface,
		cam:     cam,
		r:       r,
		lights:  make(map[string]light.Light),
		objects: make(map[string]game_object.GameObject),
		helpers: make(map[string]light.Helper),
	}
	for _, option := range options {
		option(s)
	}

	s.HandleResize()
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) AddLight(id string, l light.Light) (light.Light, error) {
	if l == nil {
		panic("scene: AddLight requires a non-nil Light")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lights[id]; ok {
		return nil, fmt.Errorf("light %q: %w", id, ErrDuplicateID)
	}
	s.lights[id] = l
	return l, nil
}

func (s *scene) RemoveLight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lights[id]; !ok {
		return false
	}
	delete(s.lights, id)
	return true
}

func (s *scene) Light(id string) (light.Light, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lights[id]
	return l, ok
}

func (s *scene) LightIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.lights)
}

func (s *scene) AddObject(id string, obj game_object.GameObject) (game_object.GameObject, error) {
	if obj == nil {
		panic("scene: AddObject requires a non-nil GameObject")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; ok {
		return nil, fmt.Errorf("object %q: %w", id, ErrDuplicateID)
	}
	s.objects[id] = obj
	return obj, nil
}

func (s *scene) RemoveObject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; !ok {
		return false
	}
	delete(s.objects, id)
	return true
}

func (s *scene) Object(id string) (game_object.GameObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	return obj, ok
}

func (s *scene) ObjectIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.objects)
}

func (s *scene) AddHelper(lightID string, h light.Helper) error {
	if h == nil {
		panic("scene: AddHelper requires a non-nil Helper")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.helpers[lightID]; ok {
		return fmt.Errorf("helper for %q: %w", lightID, ErrDuplicateID)
	}
	s.helpers[lightID] = h
	return nil
}

func (s *scene) RemoveHelper(lightID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.helpers[lightID]; !ok {
		return false
	}
	delete(s.helpers, lightID)
	return true
}

func (s *scene) Helper(lightID string) (light.Helper, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.helpers[lightID]
	return h, ok
}

func (s *scene) SetBackground(m *environment.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = m
}

func (s *scene) Background() *environment.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetEnvironment(m *environment.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.environment = m
}

func (s *scene) Environment() *environment.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.environment
}

func (s *scene) Update(dt float32) error {
	if ctrl := s.cam.Controller(); ctrl != nil {
		ctrl.Update(dt)
	}
	s.cam.Update()
	return s.r.Render(s.snapshot())
}

func (s *scene) HandleResize() {
	w, h := s.surface.Size()
	if w > 0 && h > 0 {
		s.cam.SetAspect(float32(w) / float32(h))
	}
	s.r.SetPixelRatio(s.surface.PixelRatio())
	s.r.Resize(w, h)
}

// snapshot copies everything the renderer needs out of the registry so drawing happens
// without holding the lock.
func (s *scene) snapshot() *renderer.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frame := &renderer.Frame{
		ViewProjection:        s.cam.ViewProjectionMatrix(),
		InverseViewProjection: s.cam.InverseViewProjectionMatrix(),
		CameraPosition:        s.cam.Position(),
		Background:            s.background,
		Environment:           s.environment,
	}

	lightIDs := sortedIDs(s.lights)
	lights := make([]light.Light, 0, len(lightIDs))
	for _, id := range lightIDs {
		lights = append(lights, s.lights[id])
	}
	frame.Lights, frame.Ambient = light.PackLights(lights)

	// only lights that made it into the packed array can own the shadow map
	packed := 0
	for _, l := range lights {
		if l.Kind() == light.KindAmbient {
			continue
		}
		if packed++; packed > light.MaxGPULights {
			break
		}
		if vp, ok := light.ShadowViewProjection(l); ok {
			frame.ShadowViewProjection = vp
			frame.HasShadowCaster = true
			break
		}
	}

	for _, id := range sortedIDs(s.objects) {
		obj := s.objects[id]
		if !obj.Enabled() {
			continue
		}
		mats := obj.Materials()
		item := renderer.DrawItem{
			Model:       obj.Model(),
			ModelMatrix: obj.ModelMatrix(),
			Materials:   make([]material.GPUMaterialParams, len(mats)),
		}
		for i, m := range mats {
			item.Materials[i] = material.ToGPU(m)
		}
		frame.Items = append(frame.Items, item)
	}

	for _, id := range sortedIDs(s.helpers) {
		h := s.helpers[id]
		frame.Helpers = append(frame.Helpers, renderer.HelperItem{
			ID:       id,
			Segments: h.Segments(),
			Color:    h.Color(),
			Version:  h.Version(),
		})
	}
	return frame
}

// sortedIDs returns the keys of m ordered by kind tag, then by numeric counter suffix,
// so "point_10" follows "point_9".
func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

func compareIDs(a, b string) int {
	ta, na := splitID(a)
	tb, nb := splitID(b)
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	if na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitID(id string) (string, int) {
	i := strings.LastIndexByte(id, '_')
	if i < 0 {
		return id, 0
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return id, 0
	}
	return id[:i], n
}

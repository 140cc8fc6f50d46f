package controller

import (
	"context"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/scene"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel/paneltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ LightRegistry     = scene.Scene(nil)
	_ ObjectRegistry    = scene.Scene(nil)
	_ EnvironmentTarget = scene.Scene(nil)
	_ ToneMapper        = renderer.Renderer(nil)
	_ ModelLoader       = loader.Loader(nil)
	_ EnvironmentLoader = loader.Loader(nil)
)

// fakeScene is an in-memory registry with the same duplicate rule as the real scene.
type fakeScene struct {
	lights      map[string]light.Light
	helpers     map[string]light.Helper
	objects     map[string]game_object.GameObject
	background  *environment.Map
	environment *environment.Map
	toneMapping renderer.ToneMapping
	exposure    float32
}

func newFakeScene() *fakeScene {
	return &fakeScene{
		lights:  make(map[string]light.Light),
		helpers: make(map[string]light.Helper),
		objects: make(map[string]game_object.GameObject),
	}
}

func (s *fakeScene) AddLight(id string, l light.Light) (light.Light, error) {
	if _, ok := s.lights[id]; ok {
		return nil, scene.ErrDuplicateID
	}
	s.lights[id] = l
	return l, nil
}

func (s *fakeScene) RemoveLight(id string) bool {
	_, ok := s.lights[id]
	delete(s.lights, id)
	return ok
}

func (s *fakeScene) Light(id string) (light.Light, bool) {
	l, ok := s.lights[id]
	return l, ok
}

func (s *fakeScene) AddHelper(lightID string, h light.Helper) error {
	if _, ok := s.helpers[lightID]; ok {
		return scene.ErrDuplicateID
	}
	s.helpers[lightID] = h
	return nil
}

func (s *fakeScene) RemoveHelper(lightID string) bool {
	_, ok := s.helpers[lightID]
	delete(s.helpers, lightID)
	return ok
}

func (s *fakeScene) Helper(lightID string) (light.Helper, bool) {
	h, ok := s.helpers[lightID]
	return h, ok
}

func (s *fakeScene) AddObject(id string, obj game_object.GameObject) (game_object.GameObject, error) {
	if _, ok := s.objects[id]; ok {
		return nil, scene.ErrDuplicateID
	}
	s.objects[id] = obj
	return obj, nil
}

func (s *fakeScene) RemoveObject(id string) bool {
	_, ok := s.objects[id]
	delete(s.objects, id)
	return ok
}

func (s *fakeScene) Object(id string) (game_object.GameObject, bool) {
	o, ok := s.objects[id]
	return o, ok
}

func (s *fakeScene) SetBackground(m *environment.Map)  { s.background = m }
func (s *fakeScene) SetEnvironment(m *environment.Map) { s.environment = m }

func (s *fakeScene) SetToneMapping(tm renderer.ToneMapping) { s.toneMapping = tm }
func (s *fakeScene) SetExposure(v float32)                  { s.exposure = v }

type modelLoad struct {
	ctx  context.Context
	path string
	cb   loader.ModelCallbacks
}

type environmentLoad struct {
	ctx    context.Context
	preset environment.Preset
	path   string
	cb     loader.EnvironmentCallbacks
}

// fakeLoader records loads; tests complete them by calling the stored callbacks.
type fakeLoader struct {
	mu           sync.Mutex
	models       []modelLoad
	environments []environmentLoad
}

func (l *fakeLoader) LoadModel(ctx context.Context, path string, cb loader.ModelCallbacks) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.models = append(l.models, modelLoad{ctx: ctx, path: path, cb: cb})
}

func (l *fakeLoader) LoadEnvironment(ctx context.Context, preset environment.Preset, path string, cb loader.EnvironmentCallbacks) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.environments = append(l.environments, environmentLoad{ctx: ctx, preset: preset, path: path, cb: cb})
}

func allPanels() paneltest.Host {
	return paneltest.NewHost(panel.ContainerIDs()...)
}

func TestIDGeneratorNeverReuses(t *testing.T) {
	g := NewIDGenerator()
	assert.Equal(t, "point_1", g.Next("point"))
	assert.Equal(t, "point_2", g.Next("point"))
	assert.Equal(t, "spot_1", g.Next("spot"))
	assert.Equal(t, "point_3", g.Next("point"))
}

func TestParseID(t *testing.T) {
	kind, n, ok := ParseID("directional_12")
	require.True(t, ok)
	assert.Equal(t, "directional", kind)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"", "point", "_1", "point_", "point_x", "point_0"} {
		_, _, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestMissingContainerIsFatal(t *testing.T) {
	host := paneltest.NewHost(panel.LightsContainer)
	s := newFakeScene()

	_, err := NewObjectController(s, host, &fakeLoader{})
	assert.ErrorIs(t, err, panel.ErrMissingContainer)

	_, err = NewEnvironmentController(s, s, host, &fakeLoader{})
	assert.ErrorIs(t, err, panel.ErrMissingContainer)

	_, err = NewLightController(s, paneltest.NewHost())
	assert.ErrorIs(t, err, panel.ErrMissingContainer)
}

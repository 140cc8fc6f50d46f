package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/camera"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/scene"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/controller"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel/paneltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct{}

func (fakeSurface) Size() (int, int)    { return 640, 480 }
func (fakeSurface) PixelRatio() float32 { return 1 }

// fakeRenderer covers the calls a scene makes outside of Update. Anything else panics on
// the nil embedded interface.
type fakeRenderer struct {
	renderer.Renderer
	toneMapping renderer.ToneMapping
	exposure    float32
}

func (r *fakeRenderer) Resize(int, int)                        {}
func (r *fakeRenderer) SetPixelRatio(float32)                  {}
func (r *fakeRenderer) SetToneMapping(tm renderer.ToneMapping) { r.toneMapping = tm }
func (r *fakeRenderer) SetExposure(v float32)                  { r.exposure = v }

type nopLoader struct {
	models []loader.ModelCallbacks
}

func (l *nopLoader) LoadModel(_ context.Context, _ string, cb loader.ModelCallbacks) {
	l.models = append(l.models, cb)
}

func (l *nopLoader) LoadEnvironment(context.Context, environment.Preset, string, loader.EnvironmentCallbacks) {
}

type fixture struct {
	scene    scene.Scene
	renderer *fakeRenderer
	loader   *nopLoader
	c        Controllers
	d        *intent.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{renderer: &fakeRenderer{}, loader: &nopLoader{}}
	f.scene = scene.NewScene("snapshot", fakeSurface{}, camera.NewCamera(), f.renderer)
	host := paneltest.NewHost(panel.ContainerIDs()...)

	lights, err := controller.NewLightController(f.scene, host)
	require.NoError(t, err)
	objects, err := controller.NewObjectController(f.scene, host, f.loader)
	require.NoError(t, err)
	env, err := controller.NewEnvironmentController(f.scene, f.renderer, host, f.loader)
	require.NoError(t, err)
	t.Cleanup(env.Close)

	f.c = Controllers{Lights: lights, Objects: objects, Environment: env}
	f.d = intent.NewDispatcher()
	for _, routes := range []map[string]intent.Handler{lights.Routes(), objects.Routes(), env.Routes()} {
		for route, h := range routes {
			f.d.Handle(route, h)
		}
	}
	return f
}

// populate builds a small scene through intents, the way the panels would.
func (f *fixture) populate(t *testing.T) {
	t.Helper()
	for _, in := range []intent.Intent{
		intent.LightAdd{Kind: "spot"},
		intent.LightColor{ID: "spot_1", Color: "#ff8800"},
		intent.LightIntensity{ID: "spot_1", Value: 2.5},
		intent.LightPosition{ID: "spot_1", Axis: "y", Value: 8},
		intent.LightShadow{ID: "spot_1", Enabled: false},
		intent.LightAdd{Kind: "ambient"},
		intent.ObjectAdd{Kind: "torus"},
		intent.ObjectPosition{ID: "torus_1", Axis: "x", Value: -1.5},
		intent.ObjectRotation{ID: "torus_1", Axis: "z", Value: 0.75},
		intent.ObjectScale{ID: "torus_1", Axis: "y", Value: 2},
		intent.ObjectColor{ID: "torus_1", Color: "#00ff00"},
		intent.ObjectRoughness{ID: "torus_1", Value: 0.9},
		intent.ObjectMetalness{ID: "torus_1", Value: 0.1},
		intent.EnvironmentToneMapping{Mode: "reinhard"},
		intent.EnvironmentExposure{Value: 1.75},
	} {
		require.NoError(t, f.d.Apply(in), in.Route())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	path := filepath.Join(t.TempDir(), "nested", "scene.yaml")

	saved := Capture(f.c)
	require.NoError(t, Save(path, saved))

	loaded, err := Load(path)
	require.NoError(t, err)
	for i := range saved.Lights {
		saved.Lights[i].HelperID = ""
	}
	assert.Equal(t, saved, loaded)
	assert.Equal(t, Version, loaded.Version)
	require.Len(t, loaded.Lights, 2)
	require.Len(t, loaded.Objects, 1)
	assert.Equal(t, "reinhard", loaded.Environment.ToneMapping)
}

func TestCaptureSkipsImportedModels(t *testing.T) {
	f := newFixture(t)
	f.populate(t)

	res := loader.NewResource(filepath.Join(t.TempDir(), "duck.glb"))
	f.c.Objects.Import(res)
	require.Len(t, f.loader.models, 1)

	s := Capture(f.c)
	require.Len(t, s.Objects, 1)
	assert.Equal(t, "torus", s.Objects[0].Kind)
}

func TestLoadRejectsUnknownKeysAndVersions(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("version: 1\ncamera: {}\n"), 0o644))
	_, err := Load(unknown)
	assert.Error(t, err)

	future := filepath.Join(dir, "future.yaml")
	require.NoError(t, os.WriteFile(future, []byte("version: 2\n"), 0o644))
	_, err = Load(future)
	assert.ErrorIs(t, err, ErrVersion)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRestoreRecreatesWithFreshIDs(t *testing.T) {
	f := newFixture(t)
	f.populate(t)
	s := Capture(f.c)

	require.NoError(t, Restore(s, f.c, f.d.Apply))

	lights := f.c.Lights.Records()
	require.Len(t, lights, 2)
	assert.Equal(t, "spot_2", lights[0].ID)
	assert.Equal(t, "ambient_2", lights[1].ID)
	assert.Equal(t, "#ff8800", lights[0].Color)
	assert.Equal(t, float32(2.5), lights[0].Intensity)
	assert.Equal(t, float32(8), lights[0].Position[common.AxisY])
	assert.False(t, *lights[0].CastShadow)

	_, ok := f.scene.Light("spot_1")
	assert.False(t, ok, "old entities are removed")
	l, ok := f.scene.Light("spot_2")
	require.True(t, ok)
	assert.Equal(t, float32(8), l.(light.Positioned).Position()[1])

	objects := f.c.Objects.Records()
	require.Len(t, objects, 1)
	obj := objects[0]
	assert.Equal(t, "torus_2", obj.ID)
	assert.Equal(t, s.Objects[0].Position, obj.Position)
	assert.Equal(t, [3]float32{0, 0, 0.75}, obj.Rotation)
	assert.Equal(t, [3]float32{1, 2, 1}, obj.Scale)
	assert.Equal(t, controller.MaterialRecord{Color: "#00ff00", Roughness: 0.9, Metalness: 0.1}, *obj.Material)

	assert.Equal(t, renderer.ToneMappingReinhard, f.renderer.toneMapping)
	assert.Equal(t, float32(1.75), f.renderer.exposure)
}

func TestRestoreSkipsBadRecords(t *testing.T) {
	f := newFixture(t)
	s := &Snapshot{
		Version:     Version,
		Environment: controller.EnvironmentState{Preset: "none", ToneMapping: "linear", Exposure: 1},
		Lights: []controller.LightRecord{
			{ID: "laser_1", Kind: "laser"},
			{ID: "point_1", Kind: "point", Color: "#123456", Intensity: 1},
		},
		Objects: []controller.ObjectRecord{
			{ID: "model_1", Kind: string(game_object.KindModel)},
			{ID: "box_1", Kind: "box", Scale: [3]float32{1, 1, 1}},
		},
	}

	err := Restore(s, f.c, f.d.Apply)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "laser")
	assert.Contains(t, err.Error(), "model")

	lights := f.c.Lights.Records()
	require.Len(t, lights, 1)
	assert.Equal(t, "#123456", lights[0].Color)
	assert.Len(t, f.c.Objects.Records(), 1)
}

func TestRegisteredHandlersSaveAndLoad(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "scene.yaml")
	Register(f.d, path, f.c)
	f.populate(t)

	require.NoError(t, f.d.Apply(intent.SnapshotSave{}))
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, f.d.Apply(intent.LightRemove{ID: "spot_1"}))
	require.NoError(t, f.d.Apply(intent.SnapshotLoad{}))

	assert.Len(t, f.c.Lights.Records(), 2)
	assert.Len(t, f.c.Objects.Records(), 1)
	assert.False(t, f.d.History().CanUndo(), "loading clears the history")
}

func TestLoadWithoutFileFails(t *testing.T) {
	f := newFixture(t)
	Register(f.d, filepath.Join(t.TempDir(), "none.yaml"), f.c)
	assert.ErrorIs(t, f.d.Apply(intent.SnapshotLoad{}), os.ErrNotExist)
}

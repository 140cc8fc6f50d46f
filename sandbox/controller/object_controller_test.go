package controller

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel/paneltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objectFixture struct {
	c      *ObjectController
	scene  *fakeScene
	loader *fakeLoader
	rec    *paneltest.Recorder
	sched  *paneltest.Scheduler
}

func newObjectFixture(t *testing.T, opts ...ObjectControllerOption) *objectFixture {
	t.Helper()
	f := &objectFixture{scene: newFakeScene(), loader: &fakeLoader{}, sched: &paneltest.Scheduler{}}
	host := allPanels()
	f.rec = host[panel.ObjectsContainer]
	opts = append([]ObjectControllerOption{
		WithRand(rand.New(rand.NewSource(1))),
		WithObjectNotices(f.sched, 5*time.Second),
	}, opts...)
	c, err := NewObjectController(f.scene, host, f.loader, opts...)
	require.NoError(t, err)
	f.c = c
	return f
}

func tempResource(t *testing.T, name string) *loader.Resource {
	t.Helper()
	res, err := loader.NewTempResource(name, strings.NewReader("glTF"))
	require.NoError(t, err)
	t.Cleanup(res.Release)
	return res
}

func TestAddPrimitiveDefaults(t *testing.T) {
	f := newObjectFixture(t, WithSpawnRadius(2))

	id, err := f.c.AddPrimitive(game_object.KindBox)
	require.NoError(t, err)
	assert.Equal(t, "box_1", id)

	rec, ok := f.c.Record(id)
	require.True(t, ok)
	assert.Equal(t, "box", rec.Kind)
	assert.Equal(t, float32(0.5), rec.Position[1])
	assert.LessOrEqual(t, rec.Position[0], float32(2))
	assert.GreaterOrEqual(t, rec.Position[0], float32(-2))
	assert.LessOrEqual(t, rec.Position[2], float32(2))
	assert.GreaterOrEqual(t, rec.Position[2], float32(-2))
	assert.Equal(t, [3]float32{}, rec.Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, rec.Scale)
	require.NotNil(t, rec.Material)
	assert.Equal(t, MaterialRecord{Color: "#4488ff", Roughness: 0.5, Metalness: 0.2}, *rec.Material)

	obj := f.scene.objects[id]
	require.NotNil(t, obj)
	assert.Equal(t, rec.Position, obj.Position())
	mat := obj.(game_object.Shaded).Material()
	assert.Equal(t, float32(0.5), mat.Roughness())
	assert.Equal(t, float32(0.2), mat.Metalness())
}

func TestSpawnPositionsFollowRand(t *testing.T) {
	a := newObjectFixture(t, WithRand(rand.New(rand.NewSource(7))))
	b := newObjectFixture(t, WithRand(rand.New(rand.NewSource(7))))
	idA, _ := a.c.AddPrimitive(game_object.KindSphere)
	idB, _ := b.c.AddPrimitive(game_object.KindSphere)
	recA, _ := a.c.Record(idA)
	recB, _ := b.c.Record(idB)
	assert.Equal(t, recA.Position, recB.Position)

	zero := newObjectFixture(t, WithSpawnRadius(0))
	id, _ := zero.c.AddPrimitive(game_object.KindTorus)
	rec, _ := zero.c.Record(id)
	assert.Equal(t, [3]float32{0, 0.5, 0}, rec.Position)
}

func TestAddUnknownPrimitivePanics(t *testing.T) {
	f := newObjectFixture(t)
	assert.Panics(t, func() { f.c.AddPrimitive(game_object.Kind("cone")) })
	assert.Panics(t, func() { f.c.AddPrimitive(game_object.KindModel) })
}

func TestObjectTransformEdits(t *testing.T) {
	f := newObjectFixture(t)
	id, err := f.c.AddPrimitive(game_object.KindCylinder)
	require.NoError(t, err)
	obj := f.scene.objects[id]

	_, ok := f.c.SetPosition(id, common.AxisY, 3)
	require.True(t, ok)
	assert.Equal(t, float32(3), obj.Position()[1])

	prev, ok := f.c.SetRotation(id, common.AxisZ, 1.5)
	require.True(t, ok)
	assert.Equal(t, float32(0), prev)
	assert.Equal(t, [3]float32{0, 0, 1.5}, obj.Rotation())

	prev, ok = f.c.SetScale(id, common.AxisX, 2)
	require.True(t, ok)
	assert.Equal(t, float32(1), prev)
	assert.Equal(t, [3]float32{2, 1, 1}, obj.Scale())

	rec, _ := f.c.Record(id)
	assert.Equal(t, obj.Position(), rec.Position)
	assert.Equal(t, obj.Rotation(), rec.Rotation)
	assert.Equal(t, obj.Scale(), rec.Scale)
}

func TestObjectMaterialEdits(t *testing.T) {
	f := newObjectFixture(t)
	id, err := f.c.AddPrimitive(game_object.KindBox)
	require.NoError(t, err)
	mat := f.scene.objects[id].(game_object.Shaded).Material()

	prev, ok := f.c.SetColor(id, "#00FF00")
	require.True(t, ok)
	assert.Equal(t, "#4488ff", prev)
	assert.Equal(t, [4]float32{0, 1, 0, 1}, mat.BaseColor())

	_, ok = f.c.SetRoughness(id, 2)
	require.True(t, ok)
	assert.Equal(t, float32(1), mat.Roughness())

	_, ok = f.c.SetMetalness(id, 0.9)
	require.True(t, ok)
	assert.Equal(t, float32(0.9), mat.Metalness())

	_, ok = f.c.SetColor(id, "green")
	assert.False(t, ok)
	rec, _ := f.c.Record(id)
	assert.Equal(t, "#00ff00", rec.Material.Color)
}

func TestImportSuccessNormalizesModel(t *testing.T) {
	f := newObjectFixture(t, WithMaxModelDimension(5))
	res := tempResource(t, "crate.glb")

	f.c.Import(res)
	require.Len(t, f.loader.models, 1)
	load := f.loader.models[0]
	assert.Equal(t, res.Path(), load.path)

	n, ok := f.rec.Notice("import_1")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeLoading, n.Kind)

	load.cb.OnProgress(0.5)
	n, _ = f.rec.Notice("import_1")
	assert.Contains(t, n.Text, "50%")
	assert.Equal(t, float32(0.5), n.Progress)

	mdl := model.NewModel(model.WithName("crate"), model.WithMeshes(model.Box(10, 2, 4)))
	load.cb.OnLoad(mdl)

	_, ok = f.rec.Notice("import_1")
	assert.False(t, ok, "loading notice removed")

	rec, ok := f.c.Record("model_1")
	require.True(t, ok)
	assert.Equal(t, "model", rec.Kind)
	assert.Equal(t, "crate", rec.Name)
	assert.Nil(t, rec.Material)
	assert.InDelta(t, 0.5, rec.Scale[0], 1e-6)
	assert.InDelta(t, 0, rec.Position[0], 1e-6)
	assert.InDelta(t, 0.5, rec.Position[1], 1e-6)
	assert.InDelta(t, 0, rec.Position[2], 1e-6)

	obj := f.scene.objects["model_1"]
	require.NotNil(t, obj)
	assert.Equal(t, rec.Scale, obj.Scale())
	assert.False(t, res.Released())
}

func TestImportFailureShowsErrorAndReleases(t *testing.T) {
	f := newObjectFixture(t)
	res := tempResource(t, "broken.gltf")

	f.c.Import(res)
	f.loader.models[0].cb.OnError(errors.New("draco compression is not supported"))

	n, ok := f.rec.Notice("import_1")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeError, n.Kind)
	assert.Contains(t, n.Text, "broken.gltf")
	assert.True(t, res.Released())
	_, err := os.Stat(res.Path())
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, f.scene.objects)

	f.sched.Advance(5 * time.Second)
	_, ok = f.rec.Notice("import_1")
	assert.False(t, ok)
}

func TestRemoveModelReleasesOnce(t *testing.T) {
	f := newObjectFixture(t)
	res := tempResource(t, "duck.glb")
	f.c.Import(res)
	f.loader.models[0].cb.OnLoad(model.NewModel(model.WithMeshes(model.Box(1, 1, 1))))

	assert.True(t, f.c.Remove("model_1"))
	assert.True(t, res.Released())
	assert.Empty(t, f.scene.objects)
	assert.False(t, f.c.Remove("model_1"))
}

func TestMaterialEditsIgnoreModels(t *testing.T) {
	f := newObjectFixture(t)
	f.c.Import(tempResource(t, "duck.glb"))
	f.loader.models[0].cb.OnLoad(model.NewModel(model.WithMeshes(model.Box(1, 1, 1))))

	_, ok := f.c.SetColor("model_1", "#ff0000")
	assert.False(t, ok)
	_, ok = f.c.SetRoughness("model_1", 0.1)
	assert.False(t, ok)
	_, ok = f.c.SetPosition("model_1", common.AxisX, 1)
	assert.True(t, ok)
}

func TestImportContextFromOptions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newObjectFixture(t, WithObjectContext(ctx))
	f.c.Import(tempResource(t, filepath.Join("dir", "duck.glb")))
	assert.Equal(t, ctx, f.loader.models[0].ctx)
}

func TestImportCallbacksArePosted(t *testing.T) {
	var queued []func()
	f := newObjectFixture(t, WithObjectPost(func(fn func()) error { queued = append(queued, fn); return nil }))
	f.c.Import(tempResource(t, "duck.glb"))
	f.loader.models[0].cb.OnLoad(model.NewModel(model.WithMeshes(model.Box(1, 1, 1))))

	assert.Empty(t, f.scene.objects, "completion waits for the owning goroutine")
	require.Len(t, queued, 1)
	queued[0]()
	assert.Len(t, f.scene.objects, 1)
}

func stoppedPost(func()) error { return intent.ErrStopped }

func TestImportCompletionAfterStopReleasesResource(t *testing.T) {
	f := newObjectFixture(t, WithObjectPost(stoppedPost))
	loaded := tempResource(t, "duck.glb")
	failed := tempResource(t, "crate.glb")

	f.c.Import(loaded)
	f.c.Import(failed)
	f.loader.models[0].cb.OnLoad(model.NewModel(model.WithMeshes(model.Box(1, 1, 1))))
	f.loader.models[1].cb.OnError(context.Canceled)

	for _, res := range []*loader.Resource{loaded, failed} {
		assert.True(t, res.Released())
		_, err := os.Stat(res.Path())
		assert.True(t, os.IsNotExist(err), "temp file of %s removed", res.Name())
	}
	assert.Empty(t, f.scene.objects)
}

func TestCloseReleasesImportedModels(t *testing.T) {
	f := newObjectFixture(t)
	res := tempResource(t, "duck.glb")
	f.c.Import(res)
	f.loader.models[0].cb.OnLoad(model.NewModel(model.WithMeshes(model.Box(1, 1, 1))))
	require.Len(t, f.scene.objects, 1)

	f.c.Close()
	assert.True(t, res.Released())
	_, err := os.Stat(res.Path())
	assert.True(t, os.IsNotExist(err))

	assert.NotPanics(t, f.c.Close)
}

func TestFitModel(t *testing.T) {
	small := model.NewModel(model.WithMeshes(model.Box(1, 2, 1))).Bounds()
	pos, scale := FitModel(small, 5)
	assert.Equal(t, [3]float32{1, 1, 1}, scale)
	assert.InDelta(t, 1, pos[1], 1e-6)

	pos, scale = FitModel(model.EmptyBounds(), 5)
	assert.Equal(t, [3]float32{}, pos)
	assert.Equal(t, [3]float32{1, 1, 1}, scale)

	offset := model.Bounds{Min: [3]float32{10, 2, -4}, Max: [3]float32{20, 4, 6}}
	pos, scale = FitModel(offset, 5)
	assert.InDelta(t, 0.5, scale[0], 1e-6)
	assert.InDelta(t, -7.5, pos[0], 1e-6)
	assert.InDelta(t, -1, pos[1], 1e-6)
	assert.InDelta(t, -0.5, pos[2], 1e-6)
}

func TestObjectRoutes(t *testing.T) {
	f := newObjectFixture(t)
	d := intent.NewDispatcher()
	for route, h := range f.c.Routes() {
		d.Handle(route, h)
	}

	require.NoError(t, d.Apply(intent.ObjectAdd{Kind: "sphere"}))
	require.NoError(t, d.Apply(intent.ObjectScale{ID: "sphere_1", Axis: "y", Value: 3}))
	require.NoError(t, d.Apply(intent.ObjectMetalness{ID: "sphere_1", Value: 1}))

	require.NoError(t, d.Apply(intent.Undo{}))
	rec, _ := f.c.Record("sphere_1")
	assert.Equal(t, float32(0.2), rec.Material.Metalness)

	require.NoError(t, d.Apply(intent.Undo{}))
	rec, _ = f.c.Record("sphere_1")
	assert.Equal(t, [3]float32{1, 1, 1}, rec.Scale)

	res := tempResource(t, "duck.glb")
	require.NoError(t, d.Apply(intent.ObjectImport{Resource: res}))
	assert.Len(t, f.loader.models, 1)
	assert.ErrorIs(t, d.Apply(intent.ObjectImport{}), intent.ErrInvalidIntent)

	require.NoError(t, d.Apply(intent.ObjectRemove{ID: "sphere_1"}))
	assert.Empty(t, f.c.Records())
}

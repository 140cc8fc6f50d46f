package loader

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inline(task func()) { task() }

// writeTriangleGLB saves a single-triangle binary glTF whose node is translated by offset.
func writeTriangleGLB(t *testing.T, dir string, offset [3]float64, required ...string) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	ind := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Materials = []*gltf.Material{{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 1},
			MetallicFactor:  gltf.Float(0.25),
			RoughnessFactor: gltf.Float(0.75),
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{"POSITION": pos},
			Indices:    gltf.Index(ind),
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0), Translation: offset}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	doc.ExtensionsRequired = required

	path := filepath.Join(dir, "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestImportModelBakesNodeTransform(t *testing.T) {
	path := writeTriangleGLB(t, t.TempDir(), [3]float64{2, 0, 0})
	l := NewLoader(WithExecutor(inline))

	var last float32
	m, err := l.ImportModel(context.Background(), path, func(p float32) {
		assert.GreaterOrEqual(t, p, last)
		last = p
	})
	require.NoError(t, err)
	assert.Equal(t, float32(1), last)

	assert.Equal(t, "tri", m.Name())
	require.Len(t, m.Meshes(), 1)
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, [3]float32{2, 0, 0}, m.Bounds().Min)
	assert.Equal(t, [3]float32{3, 1, 0}, m.Bounds().Max)

	// normals are computed when the file has none
	for _, v := range m.Meshes()[0].Vertices {
		assert.InDelta(t, 1, v.Normal[2], 1e-5)
	}

	require.Len(t, m.Materials(), 1)
	mat := m.Materials()[0]
	assert.Equal(t, "red", mat.Name)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, mat.BaseColor)
	assert.InDelta(t, 0.25, mat.Metallic, 1e-6)
	assert.InDelta(t, 0.75, mat.Roughness, 1e-6)
	assert.Equal(t, 0, m.Meshes()[0].MaterialIndex)
}

func TestImportModelRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0"), 0o600))

	_, err := NewLoader(WithExecutor(inline)).ImportModel(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportModelRejectsDraco(t *testing.T) {
	path := writeTriangleGLB(t, t.TempDir(), [3]float64{}, extDracoMeshCompression)

	_, err := NewLoader(WithExecutor(inline)).ImportModel(context.Background(), path, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadModelReportsExactlyOneOutcome(t *testing.T) {
	dir := t.TempDir()
	good := writeTriangleGLB(t, dir, [3]float64{})
	bad := filepath.Join(dir, "broken.glb")
	require.NoError(t, os.WriteFile(bad, []byte("not a glb"), 0o600))

	l := NewLoader(WithExecutor(inline))

	var loaded []model.Model
	var failed []error
	cb := ModelCallbacks{
		OnLoad:  func(m model.Model) { loaded = append(loaded, m) },
		OnError: func(err error) { failed = append(failed, err) },
	}
	l.LoadModel(context.Background(), good, cb)
	l.LoadModel(context.Background(), bad, cb)

	assert.Len(t, loaded, 1)
	require.Len(t, failed, 1)
	assert.True(t, strings.Contains(failed[0].Error(), "broken.glb"))
}

func TestLoadModelHonoursCancelledContext(t *testing.T) {
	path := writeTriangleGLB(t, t.TempDir(), [3]float64{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	NewLoader(WithExecutor(inline)).LoadModel(ctx, path, ModelCallbacks{
		OnLoad:  func(model.Model) { t.Fatal("unexpected load") },
		OnError: func(err error) { got = err },
	})
	assert.ErrorIs(t, got, context.Canceled)
}

func TestImportEnvironmentSynthesizesPresetSky(t *testing.T) {
	l := NewLoader(WithExecutor(inline), WithSynthesisWidth(64))
	m, err := l.ImportEnvironment(context.Background(), environment.PresetSunset, "")
	require.NoError(t, err)
	assert.Equal(t, environment.PresetSunset, m.Preset)
	assert.Equal(t, 64, m.Width)
	assert.Greater(t, len(m.Levels), 1)
}

func TestImportEnvironmentDecodesLDRFromAssetsDir(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := range 4 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 255, G: 128, B: 0, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "sky.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	var got *environment.Map
	NewLoader(WithExecutor(inline), WithAssetsDir(dir)).LoadEnvironment(
		context.Background(), environment.PresetStudio, "sky.png",
		EnvironmentCallbacks{
			OnLoad:  func(m *environment.Map) { got = m },
			OnError: func(err error) { t.Fatal(err) },
		},
	)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.Width)
	assert.Greater(t, got.Irradiance[0], got.Irradiance[2])
}

func TestImportEnvironmentMissingFile(t *testing.T) {
	_, err := NewLoader(WithExecutor(inline)).ImportEnvironment(
		context.Background(), environment.PresetCity, filepath.Join(t.TempDir(), "missing.hdr"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResourceReleaseRemovesTempFileOnce(t *testing.T) {
	r, err := NewTempResource("chair.glb", strings.NewReader("glTF"))
	require.NoError(t, err)
	assert.Equal(t, "chair.glb", r.Name())
	assert.Equal(t, ".glb", filepath.Ext(r.Path()))
	assert.FileExists(t, r.Path())

	r.Release()
	assert.True(t, r.Released())
	assert.NoFileExists(t, r.Path())
	assert.NotPanics(t, r.Release)
}

func TestNewResourceDoesNotDeleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.gltf")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	r := NewResource(path)
	r.Release()
	assert.True(t, r.Released())
	assert.FileExists(t, path)
}

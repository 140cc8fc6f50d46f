package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel/paneltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type environmentFixture struct {
	c      *EnvironmentController
	scene  *fakeScene
	loader *fakeLoader
	rec    *paneltest.Recorder
	sched  *paneltest.Scheduler
}

func newEnvironmentFixture(t *testing.T, opts ...EnvironmentControllerOption) *environmentFixture {
	t.Helper()
	f := &environmentFixture{scene: newFakeScene(), loader: &fakeLoader{}, sched: &paneltest.Scheduler{}}
	host := allPanels()
	f.rec = host[panel.EnvironmentContainer]
	opts = append([]EnvironmentControllerOption{WithEnvironmentNotices(f.sched, 5*time.Second)}, opts...)
	c, err := NewEnvironmentController(f.scene, f.scene, host, f.loader, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	f.c = c
	return f
}

func testMap(p environment.Preset) *environment.Map {
	return &environment.Map{Preset: p, Width: 8, Height: 4}
}

func TestEnvironmentInitialStateApplied(t *testing.T) {
	f := newEnvironmentFixture(t, WithInitialState(EnvironmentState{
		Preset:      "studio",
		ToneMapping: "reinhard",
		Exposure:    1.5,
	}), WithEnvironmentFiles(func(p environment.Preset) string {
		if p == environment.PresetStudio {
			return "studio.hdr"
		}
		return ""
	}))

	assert.Equal(t, renderer.ToneMappingReinhard, f.scene.toneMapping)
	assert.Equal(t, float32(1.5), f.scene.exposure)
	require.Len(t, f.loader.environments, 1)
	assert.Equal(t, environment.PresetStudio, f.loader.environments[0].preset)
	assert.Equal(t, "studio.hdr", f.loader.environments[0].path)

	var view EnvironmentView
	require.True(t, f.rec.LastView(&view))
	assert.True(t, view.Loading)
	assert.Equal(t, "studio", view.Preset)
	assert.Len(t, view.Presets, 6)
	assert.Len(t, view.ToneMappings, 5)
}

func TestPresetNoneClearsMaps(t *testing.T) {
	f := newEnvironmentFixture(t)
	f.c.SetPreset(environment.PresetForest)
	f.loader.environments[0].cb.OnLoad(testMap(environment.PresetForest))
	require.NotNil(t, f.scene.background)

	f.c.SetPreset(environment.PresetNone)
	assert.Nil(t, f.scene.background)
	assert.Nil(t, f.scene.environment)
}

func TestPresetLoadAppliesAndCaches(t *testing.T) {
	f := newEnvironmentFixture(t)

	f.c.SetPreset(environment.PresetSunset)
	n, ok := f.rec.Notice("environment")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeLoading, n.Kind)

	sunset := testMap(environment.PresetSunset)
	f.loader.environments[0].cb.OnLoad(sunset)
	assert.Same(t, sunset, f.scene.background)
	assert.Same(t, sunset, f.scene.environment)
	_, ok = f.rec.Notice("environment")
	assert.False(t, ok)

	f.c.SetPreset(environment.PresetNone)
	f.c.SetPreset(environment.PresetSunset)
	assert.Len(t, f.loader.environments, 1, "cached preset is not reloaded")
	assert.Same(t, sunset, f.scene.background)
}

func TestSupersededLoadIsCancelledAndIgnored(t *testing.T) {
	f := newEnvironmentFixture(t)

	f.c.SetPreset(environment.PresetForest)
	f.c.SetPreset(environment.PresetCity)
	require.Len(t, f.loader.environments, 2)
	forest, city := f.loader.environments[0], f.loader.environments[1]
	assert.ErrorIs(t, forest.ctx.Err(), context.Canceled)
	assert.NoError(t, city.ctx.Err())

	cityMap := testMap(environment.PresetCity)
	city.cb.OnLoad(cityMap)
	forest.cb.OnLoad(testMap(environment.PresetForest))

	assert.Same(t, cityMap, f.scene.background, "late completion of an older load must not win")
	assert.Equal(t, "city", f.c.State().Preset)

	f.c.SetPreset(environment.PresetForest)
	assert.Len(t, f.loader.environments, 2, "stale result still fills the cache")
	assert.Equal(t, environment.PresetForest, f.scene.background.Preset)
}

func TestCancelledLoadErrorIsSilent(t *testing.T) {
	f := newEnvironmentFixture(t)
	f.c.SetPreset(environment.PresetForest)
	f.c.SetPreset(environment.PresetCity)
	f.loader.environments[0].cb.OnError(context.Canceled)

	n, ok := f.rec.Notice("environment")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeLoading, n.Kind)
}

func TestLoadFailureShowsErrorThenDismisses(t *testing.T) {
	f := newEnvironmentFixture(t)
	f.c.SetPreset(environment.PresetNight)
	f.loader.environments[0].cb.OnError(errors.New("bad rgbe header"))

	n, ok := f.rec.Notice("environment")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeError, n.Kind)
	assert.Contains(t, n.Text, "bad rgbe header")

	var view EnvironmentView
	require.True(t, f.rec.LastView(&view))
	assert.False(t, view.Loading)

	f.sched.Advance(5 * time.Second)
	_, ok = f.rec.Notice("environment")
	assert.False(t, ok)

	f.c.SetPreset(environment.PresetNight)
	assert.Len(t, f.loader.environments, 2, "a failed preset can be retried")
}

func TestToneMappingAndExposureAlwaysApplied(t *testing.T) {
	f := newEnvironmentFixture(t)
	f.c.SetPreset(environment.PresetStudio)

	prev := f.c.SetToneMapping(renderer.ToneMappingCineon)
	assert.Equal(t, renderer.ToneMappingACESFilmic, prev)
	assert.Equal(t, renderer.ToneMappingCineon, f.scene.toneMapping)
	assert.Len(t, f.loader.environments, 1, "tone mapping does not restart the load")

	f.c.SetExposure(10)
	assert.Equal(t, intent.MaxExposure, f.scene.exposure)
	f.c.SetExposure(-1)
	assert.Equal(t, float32(0), f.scene.exposure)
}

func TestEnvironmentRoutes(t *testing.T) {
	f := newEnvironmentFixture(t)
	d := intent.NewDispatcher()
	for route, h := range f.c.Routes() {
		d.Handle(route, h)
	}

	require.NoError(t, d.Apply(intent.EnvironmentExposure{Value: 2}))
	require.NoError(t, d.Apply(intent.EnvironmentToneMapping{Mode: "linear"}))
	require.NoError(t, d.Apply(intent.Undo{}))
	assert.Equal(t, "aces_filmic", f.c.State().ToneMapping)
	require.NoError(t, d.Apply(intent.Undo{}))
	assert.Equal(t, float32(1), f.c.State().Exposure)

	require.NoError(t, d.Apply(intent.EnvironmentPreset{Preset: "none"}))
	assert.False(t, d.History().CanUndo(), "selecting the current preset records nothing")
}

package panel_test

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel/paneltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierLoadingThenDone(t *testing.T) {
	rec := paneltest.NewRecorder(panel.ObjectsContainer)
	n := panel.NewNotifier(rec, &paneltest.Scheduler{}, 5*time.Second)

	n.Loading("import_1", "Loading duck.glb", 0.25)
	got, ok := rec.Notice("import_1")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeLoading, got.Kind)
	assert.Equal(t, float32(0.25), got.Progress)

	n.Done("import_1")
	_, ok = rec.Notice("import_1")
	assert.False(t, ok)
}

func TestNotifierFailDismissesAfterTimeout(t *testing.T) {
	rec := paneltest.NewRecorder(panel.EnvironmentContainer)
	sched := &paneltest.Scheduler{}
	n := panel.NewNotifier(rec, sched, 5*time.Second)

	n.Loading("env", "Loading forest", -1)
	n.Fail("env", "decode failed")

	got, ok := rec.Notice("env")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeError, got.Kind)
	assert.Equal(t, "decode failed", got.Text)

	sched.Advance(4 * time.Second)
	_, ok = rec.Notice("env")
	assert.True(t, ok, "error notice dismissed early")

	sched.Advance(time.Second)
	_, ok = rec.Notice("env")
	assert.False(t, ok)
	assert.Zero(t, sched.Pending())
}

func TestNotifierRepeatedFailRestartsTimeout(t *testing.T) {
	rec := paneltest.NewRecorder(panel.EnvironmentContainer)
	sched := &paneltest.Scheduler{}
	n := panel.NewNotifier(rec, sched, 5*time.Second)

	n.Fail("env", "first")
	sched.Advance(3 * time.Second)
	n.Fail("env", "second")
	sched.Advance(3 * time.Second)

	got, ok := rec.Notice("env")
	require.True(t, ok)
	assert.Equal(t, "second", got.Text)

	sched.Advance(2 * time.Second)
	_, ok = rec.Notice("env")
	assert.False(t, ok)
}

func TestNotifierLoadingCancelsPendingDismissal(t *testing.T) {
	rec := paneltest.NewRecorder(panel.EnvironmentContainer)
	sched := &paneltest.Scheduler{}
	n := panel.NewNotifier(rec, sched, 5*time.Second)

	n.Fail("env", "failed")
	n.Loading("env", "retrying", -1)
	sched.Advance(10 * time.Second)

	got, ok := rec.Notice("env")
	require.True(t, ok)
	assert.Equal(t, panel.NoticeLoading, got.Kind)
}

func TestNewNotifierRequiresContainer(t *testing.T) {
	assert.Panics(t, func() { panel.NewNotifier(nil, nil, time.Second) })
}

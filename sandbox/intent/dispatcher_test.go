package intent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// intensityStore is a minimal handler target holding one value per id.
type intensityStore struct {
	values map[string]float32
}

func (s *intensityStore) handle(in Intent) (Intent, error) {
	v := in.(LightIntensity)
	prev, ok := s.values[v.ID]
	if !ok {
		return nil, nil
	}
	s.values[v.ID] = v.Value
	return LightIntensity{ID: v.ID, Value: prev}, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func newTestDispatcher(clock *fakeClock) (*Dispatcher, *intensityStore) {
	store := &intensityStore{values: map[string]float32{"point_1": 1}}
	d := NewDispatcher(WithHistory(NewHistory(WithClock(clock.now))))
	d.Handle(RouteLightIntensity, store.handle)
	return d, store
}

func TestApplyUnknownRoute(t *testing.T) {
	d := NewDispatcher()
	err := d.Apply(LightAdd{Kind: "point"})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestUndoRedo(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d, store := newTestDispatcher(clock)

	require.NoError(t, d.Apply(LightIntensity{ID: "point_1", Value: 2}))
	clock.t = clock.t.Add(5 * time.Second)
	require.NoError(t, d.Apply(LightIntensity{ID: "point_1", Value: 3}))
	assert.Equal(t, float32(3), store.values["point_1"])

	require.NoError(t, d.Apply(Undo{}))
	assert.Equal(t, float32(2), store.values["point_1"])
	require.NoError(t, d.Apply(Undo{}))
	assert.Equal(t, float32(1), store.values["point_1"])
	assert.False(t, d.History().CanUndo())

	require.NoError(t, d.Apply(Undo{}), "undo with empty history is a no-op")

	require.NoError(t, d.Apply(Redo{}))
	assert.Equal(t, float32(2), store.values["point_1"])
	assert.True(t, d.History().CanRedo())

	clock.t = clock.t.Add(5 * time.Second)
	require.NoError(t, d.Apply(LightIntensity{ID: "point_1", Value: 4}))
	assert.False(t, d.History().CanRedo(), "a new edit clears redo")
}

func TestSliderDragUndoesInOneStep(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d, store := newTestDispatcher(clock)

	for _, v := range []float32{1.2, 1.4, 1.6, 1.8} {
		require.NoError(t, d.Apply(LightIntensity{ID: "point_1", Value: v}))
		clock.t = clock.t.Add(50 * time.Millisecond)
	}
	require.NoError(t, d.Apply(Undo{}))
	assert.Equal(t, float32(1), store.values["point_1"])
	assert.False(t, d.History().CanUndo())

	require.NoError(t, d.Apply(Redo{}))
	assert.Equal(t, float32(1.8), store.values["point_1"])
}

func TestStaleEditIsNotRecorded(t *testing.T) {
	d, _ := newTestDispatcher(&fakeClock{t: time.Unix(1000, 0)})
	require.NoError(t, d.Apply(LightIntensity{ID: "spot_9", Value: 2}))
	assert.False(t, d.History().CanUndo())
}

func TestHistoryLimit(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	h := NewHistory(WithLimit(2), WithClock(clock.now), WithCoalesceWindow(0))
	for i := 0; i < 5; i++ {
		h.Record(LightIntensity{ID: "a", Value: float32(i + 1)}, LightIntensity{ID: "a", Value: float32(i)})
	}
	e, ok := h.popUndo()
	require.True(t, ok)
	assert.Equal(t, LightIntensity{ID: "a", Value: 4}, e.back)
	_, ok = h.popUndo()
	require.True(t, ok)
	_, ok = h.popUndo()
	assert.False(t, ok)
}

func TestDispatchRunsInOrder(t *testing.T) {
	d := NewDispatcher()
	var mu sync.Mutex
	var got []string
	d.Handle(RouteLightAdd, func(in Intent) (Intent, error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, in.(LightAdd).Kind)
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	for _, k := range []string{"point", "spot", "ambient"} {
		require.NoError(t, d.Dispatch(LightAdd{Kind: k}))
	}
	require.NoError(t, d.Call(ctx, func() error { return nil }))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"point", "spot", "ambient"}, got)
}

func TestHandleIntentDecodes(t *testing.T) {
	d := NewDispatcher()
	err := d.HandleIntent([]byte(`{"type":"nope"}`))
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestHandleUploadQueuesImport(t *testing.T) {
	d := NewDispatcher()
	imported := make(chan *loader.Resource, 1)
	d.Handle(RouteObjectImport, func(in Intent) (Intent, error) {
		imported <- in.(ObjectImport).Resource
		return nil, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	res := loader.NewResource("duck.glb")
	require.NoError(t, d.HandleUpload(res))
	select {
	case got := <-imported:
		assert.Same(t, res, got)
	case <-time.After(5 * time.Second):
		t.Fatal("import not dispatched")
	}
}

func TestFailedIntentIsLoggedAndReported(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := logger.Log
	logger.Set(zap.New(core))
	defer logger.Set(prev)

	reported := make(chan error, 1)
	d := NewDispatcher(WithErrorHandler(func(_ Intent, err error) { reported <- err }))
	d.Handle(RouteLightRemove, func(Intent) (Intent, error) { return nil, errors.New("boom") })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	require.NoError(t, d.Dispatch(LightRemove{ID: "point_1"}))
	select {
	case err := <-reported:
		assert.EqualError(t, err, "boom")
	case <-time.After(5 * time.Second):
		t.Fatal("error not reported")
	}
	assert.Equal(t, 1, logs.FilterMessage("intent failed").Len())
}

func TestSubmitAfterStop(t *testing.T) {
	d := NewDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	<-d.Done()
	assert.ErrorIs(t, d.Post(func() {}), ErrStopped)
	assert.ErrorIs(t, d.Dispatch(Undo{}), ErrStopped)
	assert.ErrorIs(t, d.Call(context.Background(), func() error { return nil }), ErrStopped)
}

func TestQueuedWorkRunsWhenStopping(t *testing.T) {
	d := NewDispatcher()
	var imported []*loader.Resource
	d.Handle(RouteObjectImport, func(in Intent) (Intent, error) {
		imported = append(imported, in.(ObjectImport).Resource)
		return nil, nil
	})

	ran := 0
	require.NoError(t, d.Post(func() { ran++ }))
	res := loader.NewResource("duck.glb")
	require.NoError(t, d.HandleUpload(res))
	require.NoError(t, d.Post(func() { ran++ }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	assert.Equal(t, 2, ran)
	require.Len(t, imported, 1, "a queued import still reaches its handler")
	assert.Same(t, res, imported[0])
	assert.ErrorIs(t, d.Post(func() { ran++ }), ErrStopped)
	assert.Equal(t, 2, ran)
}

func TestTryDispatchNeverWaits(t *testing.T) {
	d := NewDispatcher(WithQueueSize(1))

	require.NoError(t, d.TryDispatch(Undo{}))
	assert.ErrorIs(t, d.TryDispatch(Redo{}), ErrBusy)
	assert.ErrorIs(t, d.TryPost(func() {}), ErrBusy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)
	assert.ErrorIs(t, d.TryDispatch(Undo{}), ErrStopped)
}

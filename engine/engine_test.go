package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeWindow blocks in ProcessMessages until RequestClose.
type fakeWindow struct {
	onResize  func(width, height int)
	closeOnce sync.Once
	closing   chan struct{}
	closed    atomic.Bool
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{closing: make(chan struct{})}
}

func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *fakeWindow) ProcessMessages()                                  { <-w.closing }
func (w *fakeWindow) RequestClose()                                     { w.closeOnce.Do(func() { close(w.closing) }) }
func (w *fakeWindow) Close() error {
	w.closed.Store(true)
	return nil
}

// releaseRenderer counts releases; the other methods are unused by the engine.
type releaseRenderer struct {
	renderer.Renderer
	released atomic.Int32
}

func (r *releaseRenderer) Release() { r.released.Add(1) }

type fakeScene struct {
	r        *releaseRenderer
	updates  atomic.Int32
	resizes  atomic.Int32
	panicAt  int32
	err      error
	onUpdate func()
}

func (s *fakeScene) Update(float32) error {
	n := s.updates.Add(1)
	if s.panicAt > 0 && n == s.panicAt {
		panic("boom")
	}
	if s.onUpdate != nil {
		s.onUpdate()
	}
	return s.err
}

func (s *fakeScene) HandleResize()                 { s.resizes.Add(1) }
func (s *fakeScene) Renderer() renderer.Renderer { return s.r }

func runAsync(e Engine) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	return done
}

func TestNewEnginePanicsWithoutCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewEngine(WithScene(&fakeScene{})) })
	assert.Panics(t, func() { NewEngine(WithWindow(newFakeWindow())) })
}

func TestResizeCallbackReachesScene(t *testing.T) {
	w := newFakeWindow()
	s := &fakeScene{r: &releaseRenderer{}}
	NewEngine(WithWindow(w), WithScene(s))

	w.onResize(640, 480)
	assert.Equal(t, int32(1), s.resizes.Load())
}

func TestQuitStopsLoopAndReleasesRenderer(t *testing.T) {
	w := newFakeWindow()
	s := &fakeScene{r: &releaseRenderer{}}
	e := NewEngine(WithWindow(w), WithScene(s))
	s.onUpdate = func() {
		if s.updates.Load() == 3 {
			e.Quit()
		}
	}

	done := runAsync(e)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}

	assert.GreaterOrEqual(t, s.updates.Load(), int32(3))
	assert.Equal(t, int32(1), s.r.released.Load())
	assert.True(t, w.closed.Load())
	e.Quit()
}

func TestRenderPanicIsLoggedAndQuits(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	s := &fakeScene{r: &releaseRenderer{}, panicAt: 2}
	e := NewEngine(WithWindow(newFakeWindow()), WithScene(s))

	done := runAsync(e)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after panic")
	}

	require.Equal(t, 1, logs.FilterMessage("render goroutine recovered from panic").Len())
	assert.Equal(t, int32(1), s.r.released.Load())
	select {
	case <-e.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestRepeatedFrameErrorsAreLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	s := &fakeScene{r: &releaseRenderer{}, err: errors.New("surface lost")}
	e := NewEngine(WithWindow(newFakeWindow()), WithScene(s), WithRenderFrameLimit(1000))
	s.onUpdate = func() {
		if s.updates.Load() == 5 {
			e.Quit()
		}
	}

	<-runAsync(e)
	assert.Equal(t, 1, logs.FilterMessage("frame failed").Len())
}

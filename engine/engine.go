package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/profiler"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"go.uber.org/zap"
)

// Window is the part of window.Window the engine drives. ProcessMessages and Close run on
// the goroutine that created the window.
type Window interface {
	SetResizeCallback(callback func(width, height int))
	ProcessMessages()
	RequestClose()
	Close() error
}

// Renderable is the part of scene.Scene the engine drives.
type Renderable interface {
	// Update renders one frame.
	Update(dt float32) error

	// HandleResize re-reads the surface size.
	HandleResize()

	// Renderer returns the renderer released when the render loop exits.
	Renderer() renderer.Renderer
}

// engine implements the Engine interface.
// Coordinates the window message loop and the render goroutine.
type engine struct {
	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window Window
	scene  Renderable

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It runs the window message loop on the calling goroutine and renders the scene on its own goroutine.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderCallback registers the function called after each render frame.
	// Must be called before Run.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// Run starts the render goroutine and the window message loop. It blocks until the window
	// closes or Quit is called, waits for the render goroutine to release the renderer, then
	// closes the window. Must be called from the goroutine that created the window.
	Run()

	// Quit signals the render goroutine and the message loop to stop.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()

	// Done returns a channel closed once Quit has been signalled.
	Done() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates a new Engine. A window and a scene are required; NewEngine panics without them.
// The window's resize callback is wired to the scene's HandleResize.
//
// Parameters:
//   - options: functional options for engine configuration (window, scene, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		panic("engine: NewEngine requires a window")
	}
	if e.scene == nil {
		panic("engine: NewEngine requires a scene")
	}

	e.window.SetResizeCallback(func(_, _ int) {
		e.scene.HandleResize()
	})
	return e
}

func (e *engine) Run() {
	e.wg.Add(1)
	go e.handleRender()

	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()

	if err := e.window.Close(); err != nil {
		logger.Log.Warn("failed to close window", zap.Error(err))
	}
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

// signalQuit closes the quit channel and asks the window loop to stop.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		e.window.RequestClose()
	})
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
// The renderer is released on this goroutine when the loop exits.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := e.scene.Renderer(); r != nil {
			r.Release()
		}
	}()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("render goroutine recovered from panic",
				zap.String("panic", fmt.Sprint(r)),
				zap.Stack("stack"),
			)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	var lastErr string

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			frameStart := time.Now()
			dt := float32(frameStart.Sub(lastRender).Seconds())
			lastRender = frameStart

			// a failing surface fails every frame, so only changes are logged
			if err := e.scene.Update(dt); err != nil {
				if msg := err.Error(); msg != lastErr {
					logger.Log.Warn("frame failed", zap.Error(err))
					lastErr = msg
				}
			} else {
				lastErr = ""
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled.Load() && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
					select {
					case <-e.quitChannel:
						return
					case <-time.After(remaining):
					}
				}
			}
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// Package app assembles the lighting sandbox: window, renderer, scene, loader, panel server,
// controllers and the intent dispatcher, and runs them until the window closes.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/engine"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/camera"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/scene"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/window"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/config"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/controller"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/snapshot"
	"go.uber.org/zap"
)

// App is the running sandbox.
type App interface {
	// Run serves the panels, dispatches intents and renders until the window closes or ctx
	// is done. It must be called from the goroutine that created the App, since the window
	// message loop runs there.
	//
	// Parameters:
	//   - ctx: stops the sandbox when done
	//
	// Returns:
	//   - error: error if the panel server fails
	Run(ctx context.Context) error
}

// app implements the App interface.
type app struct {
	cfg        *config.Config
	configPath string

	window     window.Window
	renderer   renderer.Renderer
	scene      scene.Scene
	engine     engine.Engine
	server     panel.Server
	dispatcher *intent.Dispatcher
	input      *inputHandler

	controllers snapshot.Controllers

	ctx    context.Context
	cancel context.CancelFunc
}

var _ App = &app{}

// NewApp builds the sandbox from cfg. The window is created on the calling goroutine.
//
// Parameters:
//   - cfg: the validated configuration
//   - options: app options
//
// Returns:
//   - App: the sandbox
//   - error: error if a panel container is missing or the renderer settings are invalid
func NewApp(cfg *config.Config, options ...AppBuilderOption) (App, error) {
	if cfg == nil {
		panic("app: NewApp requires a config")
	}
	a := &app{cfg: cfg}
	for _, opt := range options {
		opt(a)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	rendererOpts, err := rendererOptions(cfg)
	if err != nil {
		a.cancel()
		return nil, err
	}

	a.window = window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(320, 240),
	)
	a.renderer = renderer.NewRenderer(renderer.BackendTypeWGPU, a.window, rendererOpts...)

	view := cfg.Camera
	ctrl := camera.NewCameraController(
		camera.WithRadius(view.Distance),
		camera.WithAzimuth(radians(view.Azimuth)),
		camera.WithElevation(radians(view.Elevation)),
		camera.WithTarget(view.Target),
		camera.WithRadiusBounds(view.Near*10, view.Far/2),
		camera.WithDamping(0.25),
	)
	cam := camera.NewCamera(
		camera.WithController(ctrl),
		camera.WithFov(radians(view.Fov)),
		camera.WithClipPlanes(view.Near, view.Far),
	)
	a.scene = scene.NewScene("lightlab", a.window, cam, a.renderer)

	a.server = panel.NewServer(panel.ContainerIDs(), panel.WithAddr(cfg.Server.Addr))
	status, err := a.server.Container(panel.LightsContainer)
	if err != nil {
		a.cancel()
		return nil, err
	}
	failures := panel.NewNotifier(status, panel.RealScheduler, cfg.Notices.ErrorTimeout.Duration)
	a.dispatcher = intent.NewDispatcher(intent.WithErrorHandler(func(in intent.Intent, err error) {
		failures.Fail(in.Route(), fmt.Sprintf("%s failed: %v", in.Route(), err))
	}))
	if err := a.buildControllers(); err != nil {
		a.cancel()
		return nil, err
	}

	a.input = newInputHandler(ctrl, view.Target, a.dispatchInput)
	a.window.SetMouseButtonCallback(a.input.mouseButton)
	a.window.SetMouseMoveCallback(a.input.mouseMove)
	a.window.SetScrollCallback(a.input.scroll)
	a.window.SetKeyDownCallback(a.input.keyDown)

	a.engine = engine.NewEngine(
		engine.WithWindow(a.window),
		engine.WithScene(a.scene),
		engine.WithProfiling(cfg.Renderer.Profiling),
		engine.WithRenderFrameLimit(cfg.Renderer.FrameLimit),
	)
	return a, nil
}

// buildControllers creates the controllers and registers their routes. Asynchronous
// completions are posted back to the dispatcher goroutine.
func (a *app) buildControllers() error {
	ldr := loader.NewLoader(loader.WithAssetsDir(a.cfg.Environment.AssetsDir))
	timeout := a.cfg.Notices.ErrorTimeout.Duration
	post := a.dispatcher.Post

	lights, err := controller.NewLightController(a.scene, a.server)
	if err != nil {
		return fmt.Errorf("lights panel: %w", err)
	}
	objects, err := controller.NewObjectController(a.scene, a.server, ldr,
		controller.WithSpawnRadius(a.cfg.Objects.SpawnRadius),
		controller.WithMaxModelDimension(a.cfg.Objects.MaxModelDimension),
		controller.WithObjectPost(post),
		controller.WithObjectContext(a.ctx),
		controller.WithObjectNotices(panel.RealScheduler, timeout),
	)
	if err != nil {
		return fmt.Errorf("objects panel: %w", err)
	}
	env, err := controller.NewEnvironmentController(a.scene, a.renderer, a.server, ldr,
		controller.WithInitialState(environmentState(a.cfg)),
		controller.WithEnvironmentFiles(a.cfg.EnvironmentFile),
		controller.WithEnvironmentPost(post),
		controller.WithEnvironmentContext(a.ctx),
		controller.WithEnvironmentNotices(panel.RealScheduler, timeout),
	)
	if err != nil {
		return fmt.Errorf("environment panel: %w", err)
	}

	for _, routes := range []map[string]intent.Handler{lights.Routes(), objects.Routes(), env.Routes()} {
		for route, h := range routes {
			a.dispatcher.Handle(route, h)
		}
	}
	a.controllers = snapshot.Controllers{Lights: lights, Objects: objects, Environment: env}
	snapshot.Register(a.dispatcher, a.cfg.Snapshot.Path, a.controllers)
	a.server.SetHandler(a.dispatcher)
	return nil
}

func (a *app) dispatch(in intent.Intent) {
	if err := a.dispatcher.Dispatch(in); err != nil {
		logger.Log.Debug("intent dropped", zap.String("route", in.Route()), zap.Error(err))
	}
}

// dispatchInput queues window input. It runs on the render goroutine, so a full queue
// drops the intent instead of stalling the frame.
func (a *app) dispatchInput(in intent.Intent) {
	if err := a.dispatcher.TryDispatch(in); err != nil {
		logger.Log.Warn("input intent dropped", zap.String("route", in.Route()), zap.Error(err))
	}
}

func (a *app) Run(ctx context.Context) error {
	defer a.cancel()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.dispatcher.Run(a.ctx)
	}()

	var serveErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.server.ListenAndServe(a.ctx); err != nil {
			serveErr = err
			logger.Log.Error("panel server stopped", zap.Error(err))
			a.engine.Quit()
		}
	}()
	logger.Log.Info("panels available", zap.String("url", "http://"+a.cfg.Server.Addr))

	if a.configPath != "" {
		if err := config.Watch(a.ctx, a.configPath, func(cfg *config.Config) {
			for _, in := range environmentIntents(cfg) {
				norm, err := intent.Normalize(in)
				if err != nil {
					logger.Log.Warn("config value ignored", zap.String("route", in.Route()), zap.Error(err))
					continue
				}
				a.dispatch(norm)
			}
		}); err != nil {
			logger.Log.Warn("config hot reload disabled", zap.Error(err))
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			a.engine.Quit()
		case <-a.engine.Done():
		}
	}()

	a.engine.Run()

	a.cancel()
	wg.Wait()
	a.controllers.Objects.Close()
	a.controllers.Environment.Close()
	logger.Log.Info("sandbox stopped")
	return serveErr
}

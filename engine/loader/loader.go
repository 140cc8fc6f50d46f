package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for files the loader has no backend for.
var ErrUnsupportedFormat = errors.New("unsupported format")

// readProgressShare is the fraction of model progress attributed to reading the file;
// the remainder covers mesh extraction.
const readProgressShare = 0.6

// ModelCallbacks receives the outcome of an asynchronous model load.
// Callbacks run on a loader worker goroutine. Exactly one of OnLoad or OnError is called.
type ModelCallbacks struct {
	OnProgress func(fraction float32)
	OnLoad     func(m model.Model)
	OnError    func(err error)
}

// EnvironmentCallbacks receives the outcome of an asynchronous environment load.
// Callbacks run on a loader worker goroutine. Exactly one of OnLoad or OnError is called.
type EnvironmentCallbacks struct {
	OnLoad  func(m *environment.Map)
	OnError func(err error)
}

// loader is the implementation of the Loader interface.
type loader struct {
	workers        int
	synthesisWidth int
	assetsDir      string

	pool   worker.DynamicWorkerPool
	submit func(fn func())
	taskID atomic.Int64

	backend loaderBackend
}

// Loader decodes model and environment assets. The synchronous Import methods do the work
// on the calling goroutine; the Load methods run it on a worker pool and report through
// callbacks.
type Loader interface {
	// ImportModel decodes a glTF/GLB file into a model.
	// The backend is selected based on the file extension (.gltf/.glb).
	//
	// Parameters:
	//   - ctx: cancels the import between stages
	//   - path: the file path to the model file
	//   - progress: called with the completed fraction, may be nil
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: ErrUnsupportedFormat for unknown extensions, or the decode error
	ImportModel(ctx context.Context, path string, progress func(float32)) (model.Model, error)

	// ImportEnvironment decodes and prefilters an environment map. An empty path
	// synthesizes a procedural sky for the preset instead of reading a file.
	//
	// Parameters:
	//   - ctx: cancels decoding and prefiltering
	//   - preset: the preset the map is built for
	//   - path: the HDR file path, relative paths resolve against the assets directory
	//
	// Returns:
	//   - *environment.Map: the prefiltered map
	//   - error: error if decoding fails or ctx is cancelled
	ImportEnvironment(ctx context.Context, preset environment.Preset, path string) (*environment.Map, error)

	// LoadModel runs ImportModel on the worker pool.
	//
	// Parameters:
	//   - ctx: cancels the load
	//   - path: the file path to the model file
	//   - cb: the callbacks to report through
	LoadModel(ctx context.Context, path string, cb ModelCallbacks)

	// LoadEnvironment runs ImportEnvironment on the worker pool.
	//
	// Parameters:
	//   - ctx: cancels the load
	//   - preset: the preset the map is built for
	//   - path: the HDR file path, may be empty
	//   - cb: the callbacks to report through
	LoadEnvironment(ctx context.Context, preset environment.Preset, path string, cb EnvironmentCallbacks)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF backend and the given options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers:        max(runtime.NumCPU()/2, 1),
		synthesisWidth: environment.MaxBaseWidth,
		backend:        newGLTFLoaderBackend(),
	}
	for _, option := range options {
		option(l)
	}

	if l.submit == nil {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
		l.submit = l.submitToPool
	}
	return l
}

func (l *loader) submitToPool(fn func()) {
	id := int(l.taskID.Add(1))
	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			fn()
			return nil, nil
		},
	})
}

func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func (l *loader) ImportModel(ctx context.Context, path string, progress func(float32)) (model.Model, error) {
	if progress == nil {
		progress = func(float32) {}
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	progress(0)
	cr := &countingReader{r: f, total: size, report: func(p float32) {
		progress(p * readProgressShare)
	}}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	m, err := backend.Import(name, cr, filepath.Dir(path), func(p float32) {
		progress(readProgressShare + p*(1-readProgressShare))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (l *loader) ImportEnvironment(ctx context.Context, preset environment.Preset, path string) (*environment.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var src *environment.HDRImage
	if path == "" {
		src = environment.Synthesize(preset, l.synthesisWidth)
		if src == nil {
			return nil, fmt.Errorf("%w: no sky for preset %q", ErrUnsupportedFormat, preset)
		}
	} else {
		if !filepath.IsAbs(path) && l.assetsDir != "" {
			path = filepath.Join(l.assetsDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load environment %s: %w", path, err)
		}
		src, err = decodeEnvironmentImage(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load environment %s: %w", path, err)
		}
	}

	start := time.Now()
	m, err := environment.Prefilter(ctx, preset, src)
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("environment prefiltered",
		zap.String("preset", string(preset)),
		zap.Int("levels", len(m.Levels)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

func (l *loader) LoadModel(ctx context.Context, path string, cb ModelCallbacks) {
	l.submit(func() {
		m, err := l.ImportModel(ctx, path, cb.OnProgress)
		if err != nil {
			logger.Log.Warn("model load failed", zap.String("path", path), zap.Error(err))
			if cb.OnError != nil {
				cb.OnError(err)
			}
			return
		}
		logger.Log.Info("model loaded",
			zap.String("path", path),
			zap.Int("meshes", len(m.Meshes())),
			zap.Int("triangles", m.TriangleCount()),
		)
		if cb.OnLoad != nil {
			cb.OnLoad(m)
		}
	})
}

func (l *loader) LoadEnvironment(ctx context.Context, preset environment.Preset, path string, cb EnvironmentCallbacks) {
	l.submit(func() {
		m, err := l.ImportEnvironment(ctx, preset, path)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Log.Warn("environment load failed", zap.String("preset", string(preset)), zap.Error(err))
			}
			if cb.OnError != nil {
				cb.OnError(err)
			}
			return
		}
		if cb.OnLoad != nil {
			cb.OnLoad(m)
		}
	})
}

// countingReader reports the fraction of total bytes read so far.
type countingReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   float32
	report func(float32)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.total > 0 {
		frac := min(float32(c.read)/float32(c.total), 1)
		// throttle to whole percents
		if frac-c.last >= 0.01 || (frac == 1 && c.last < 1) {
			c.last = frac
			c.report(frac)
		}
	}
	return n, err
}

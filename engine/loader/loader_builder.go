package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of pool workers used by the asynchronous load methods.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithAssetsDir sets the directory relative environment paths are resolved against.
//
// Parameters:
//   - dir: the assets directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the assets directory to a loader
func WithAssetsDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.assetsDir = dir
	}
}

// WithSynthesisWidth sets the panorama width used for procedural preset skies.
func WithSynthesisWidth(width int) LoaderBuilderOption {
	return func(l *loader) {
		if width > 0 {
			l.synthesisWidth = width
		}
	}
}

// WithExecutor replaces the worker pool with fn, which must eventually run each task it
// is given. Tests pass a function that runs tasks inline.
//
// Parameters:
//   - fn: the task executor
//
// Returns:
//   - LoaderBuilderOption: a function that applies the executor to a loader
func WithExecutor(fn func(task func())) LoaderBuilderOption {
	return func(l *loader) {
		l.submit = fn
	}
}

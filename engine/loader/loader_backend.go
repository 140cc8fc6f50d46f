package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
)

// loaderBackend defines the generic interface for importing models from a stream.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Import decodes a model from r.
	//
	// Parameters:
	//   - name: display name given to the resulting model
	//   - r: the reader providing model data
	//   - dir: directory used to resolve external buffers, empty when none are allowed
	//   - progress: called with fractions in [0, 1] while decoding, may be nil
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if decoding fails
	Import(name string, r io.Reader, dir string, progress func(float32)) (model.Model, error)
}

package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"

	"go.uber.org/zap"
)

// Resource is a handle to a file-backed asset, typically an uploaded model copied to a
// temporary file. Release removes the backing file exactly once; later calls are no-ops.
type Resource struct {
	name     string
	path     string
	owned    bool
	once     sync.Once
	released atomic.Bool
}

// NewResource wraps an existing file. Releasing it does not delete the file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - *Resource: the resource handle
func NewResource(path string) *Resource {
	return &Resource{name: filepath.Base(path), path: path}
}

// NewTempResource copies r into a temporary file that keeps the extension of name.
// The temporary file is deleted when the resource is released.
//
// Parameters:
//   - name: the original file name, used for display and extension
//   - r: the content to copy
//
// Returns:
//   - *Resource: the resource handle
//   - error: error if the temporary file cannot be written
func NewTempResource(name string, r io.Reader) (*Resource, error) {
	f, err := os.CreateTemp("", "lightlab-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return &Resource{name: filepath.Base(name), path: f.Name(), owned: true}, nil
}

// Name returns the original file name.
func (r *Resource) Name() string {
	return r.name
}

// Path returns the path of the backing file.
func (r *Resource) Path() string {
	return r.path
}

// Released reports whether Release has been called.
func (r *Resource) Released() bool {
	return r.released.Load()
}

// Release frees the resource. Only the first call has an effect.
func (r *Resource) Release() {
	r.once.Do(func() {
		r.released.Store(true)
		if !r.owned {
			return
		}
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			logger.Log.Warn("failed to remove resource file", zap.String("path", r.path), zap.Error(err))
		}
	})
}

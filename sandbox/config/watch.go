package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay collapses the burst of events editors produce for a single save.
const reloadDelay = 100 * time.Millisecond

// Watch reloads the file at path whenever it is written or replaced and passes each valid
// result to onChange. Invalid files are logged and skipped. The parent directory is watched
// so editors that save by renaming are seen. Watching stops when ctx is done.
//
// Parameters:
//   - ctx: stops the watcher
//   - path: the TOML file
//   - onChange: called from a watcher goroutine with each reloaded configuration
//
// Returns:
//   - error: error if the watcher cannot be started
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	var mu sync.Mutex
	var timer *time.Timer
	reload := func() {
		cfg, err := Load(abs)
		if err != nil {
			logger.Log.Warn("config reload skipped", zap.String("path", abs), zap.Error(err))
			return
		}
		logger.Log.Info("config reloaded", zap.String("path", abs))
		onChange(cfg)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				mu.Lock()
				if timer == nil {
					timer = time.AfterFunc(reloadDelay, reload)
				} else {
					timer.Reset(reloadDelay)
				}
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Log.Warn("config watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

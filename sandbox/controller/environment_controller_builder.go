package controller

import (
	"context"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
)

// EnvironmentControllerOption configures an EnvironmentController.
type EnvironmentControllerOption func(*EnvironmentController)

// WithInitialState sets the configuration applied at construction. The names must parse.
func WithInitialState(state EnvironmentState) EnvironmentControllerOption {
	return func(c *EnvironmentController) {
		c.state = state
	}
}

// WithEnvironmentFiles sets the HDR file of each preset. Presets that map to "" use a
// procedural sky.
func WithEnvironmentFiles(files func(environment.Preset) string) EnvironmentControllerOption {
	return func(c *EnvironmentController) {
		if files != nil {
			c.files = files
		}
	}
}

// WithEnvironmentPost sets how loader callbacks reach the controller's goroutine.
func WithEnvironmentPost(post PostFunc) EnvironmentControllerOption {
	return func(c *EnvironmentController) {
		if post != nil {
			c.post = post
		}
	}
}

// WithEnvironmentContext sets the parent context of environment loads.
func WithEnvironmentContext(ctx context.Context) EnvironmentControllerOption {
	return func(c *EnvironmentController) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithEnvironmentNotices sets the scheduler and timeout of load error notices.
func WithEnvironmentNotices(sched panel.Scheduler, errorTimeout time.Duration) EnvironmentControllerOption {
	return func(c *EnvironmentController) {
		if sched != nil {
			c.sched = sched
		}
		if errorTimeout > 0 {
			c.errorTimeout = errorTimeout
		}
	}
}

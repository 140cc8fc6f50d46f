package controller

import (
	"context"
	"math/rand"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
)

// ObjectControllerOption configures an ObjectController.
type ObjectControllerOption func(*ObjectController)

// WithRand sets the random source for spawn positions.
func WithRand(rng *rand.Rand) ObjectControllerOption {
	return func(c *ObjectController) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithSpawnRadius bounds the random x/z position of new primitives.
func WithSpawnRadius(r float32) ObjectControllerOption {
	return func(c *ObjectController) {
		if r >= 0 {
			c.spawnRadius = r
		}
	}
}

// WithMaxModelDimension sets the largest extent an imported model keeps.
func WithMaxModelDimension(d float32) ObjectControllerOption {
	return func(c *ObjectController) {
		if d > 0 {
			c.maxDimension = d
		}
	}
}

// WithObjectPost sets how loader callbacks reach the controller's goroutine.
func WithObjectPost(post PostFunc) ObjectControllerOption {
	return func(c *ObjectController) {
		if post != nil {
			c.post = post
		}
	}
}

// WithObjectContext sets the context imports run under.
func WithObjectContext(ctx context.Context) ObjectControllerOption {
	return func(c *ObjectController) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithObjectNotices sets the scheduler and timeout of import error notices.
func WithObjectNotices(sched panel.Scheduler, errorTimeout time.Duration) ObjectControllerOption {
	return func(c *ObjectController) {
		if sched != nil {
			c.sched = sched
		}
		if errorTimeout > 0 {
			c.errorTimeout = errorTimeout
		}
	}
}

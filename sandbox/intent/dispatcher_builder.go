package intent

import "time"

// DispatcherBuilderOption configures a Dispatcher.
type DispatcherBuilderOption func(*Dispatcher)

// WithQueueSize sets how many intents and callbacks may wait before submitters block.
func WithQueueSize(n int) DispatcherBuilderOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan func(), n)
		}
	}
}

// WithHistory sets the undo history.
func WithHistory(h *History) DispatcherBuilderOption {
	return func(d *Dispatcher) {
		d.history = h
	}
}

// WithErrorHandler sets a callback for intents that fail on the dispatcher goroutine.
func WithErrorHandler(f func(Intent, error)) DispatcherBuilderOption {
	return func(d *Dispatcher) {
		d.onError = f
	}
}

// HistoryBuilderOption configures a History.
type HistoryBuilderOption func(*History)

// WithLimit sets how many undo steps are kept.
func WithLimit(n int) HistoryBuilderOption {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// WithCoalesceWindow sets how close in time two edits of the same property must be to merge.
// Zero disables merging.
func WithCoalesceWindow(d time.Duration) HistoryBuilderOption {
	return func(h *History) {
		if d >= 0 {
			h.window = d
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) HistoryBuilderOption {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}

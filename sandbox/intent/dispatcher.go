package intent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"go.uber.org/zap"
)

var (
	// ErrStopped is returned when work is submitted after the dispatcher stopped.
	ErrStopped = errors.New("dispatcher stopped")
	// ErrBusy is returned by TryPost and TryDispatch when the queue is full.
	ErrBusy = errors.New("dispatcher queue full")
)

// Handler applies one intent. It returns the intent that reverts the change, or nil when
// the change cannot be undone or did nothing.
type Handler func(in Intent) (Intent, error)

// Dispatcher runs every intent and posted callback on one goroutine, in submission order.
// Handlers therefore never run concurrently with each other.
type Dispatcher struct {
	queue   chan func()
	done    chan struct{}
	stop    sync.Once
	history *History

	// gate is held shared while submitting; Run takes it exclusively to seal the queue.
	gate   sync.RWMutex
	sealed bool

	mu       *sync.RWMutex
	handlers map[string]Handler
	onError  func(Intent, error)
}

// NewDispatcher creates a Dispatcher. Run must be called for queued work to execute.
//
// Parameters:
//   - options: dispatcher options
//
// Returns:
//   - *Dispatcher: the dispatcher
func NewDispatcher(options ...DispatcherBuilderOption) *Dispatcher {
	d := &Dispatcher{
		queue:    make(chan func(), 256),
		done:     make(chan struct{}),
		mu:       &sync.RWMutex{},
		handlers: make(map[string]Handler),
	}
	for _, opt := range options {
		opt(d)
	}
	if d.history == nil {
		d.history = NewHistory()
	}
	return d
}

// Handle registers h for route, replacing any earlier handler.
//
// Parameters:
//   - route: the intent route
//   - h: the handler
func (d *Dispatcher) Handle(route string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[route] = h
}

// History returns the undo history.
func (d *Dispatcher) History() *History {
	return d.history
}

// Run executes queued work until ctx is done. It then stops accepting work and runs what
// is still queued before returning, so every accepted callback runs exactly once.
//
// Parameters:
//   - ctx: stops the dispatcher
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return
		case f := <-d.queue:
			f()
		}
	}
}

func (d *Dispatcher) shutdown() {
	// Closing done first wakes submitters blocked on a full queue.
	d.stop.Do(func() { close(d.done) })
	d.gate.Lock()
	d.sealed = true
	d.gate.Unlock()
	for {
		select {
		case f := <-d.queue:
			f()
		default:
			return
		}
	}
}

// Done is closed once Run stops accepting work.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Post queues f to run on the dispatcher goroutine.
//
// Parameters:
//   - f: the callback
//
// Returns:
//   - error: ErrStopped if the dispatcher has stopped
func (d *Dispatcher) Post(f func()) error {
	d.gate.RLock()
	defer d.gate.RUnlock()
	if d.sealed {
		return ErrStopped
	}
	select {
	case d.queue <- f:
		return nil
	case <-d.done:
		return ErrStopped
	}
}

// TryPost queues f like Post but never waits for room.
//
// Returns:
//   - error: ErrBusy if the queue is full, ErrStopped if the dispatcher has stopped
func (d *Dispatcher) TryPost(f func()) error {
	d.gate.RLock()
	defer d.gate.RUnlock()
	if d.sealed {
		return ErrStopped
	}
	select {
	case d.queue <- f:
		return nil
	default:
	}
	select {
	case <-d.done:
		return ErrStopped
	default:
		return ErrBusy
	}
}

// Dispatch queues in. Handler errors are logged, not returned.
//
// Parameters:
//   - in: the intent
//
// Returns:
//   - error: ErrStopped if the dispatcher has stopped
func (d *Dispatcher) Dispatch(in Intent) error {
	return d.Post(d.task(in))
}

// TryDispatch queues in without waiting, for callers that must not block such as window
// input on the render goroutine.
//
// Returns:
//   - error: ErrBusy if the queue is full, ErrStopped if the dispatcher has stopped
func (d *Dispatcher) TryDispatch(in Intent) error {
	return d.TryPost(d.task(in))
}

func (d *Dispatcher) task(in Intent) func() {
	return func() {
		if err := d.Apply(in); err != nil {
			d.report(in, err)
		}
	}
}

// Call runs f on the dispatcher goroutine and waits for it.
//
// Parameters:
//   - ctx: bounds the wait
//   - f: the function
//
// Returns:
//   - error: f's error, ErrStopped, or ctx's error
func (d *Dispatcher) Call(ctx context.Context, f func() error) error {
	result := make(chan error, 1)
	if err := d.Post(func() { result <- f() }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleIntent decodes a panel frame and queues it.
//
// Parameters:
//   - data: the JSON frame
//
// Returns:
//   - error: a decode error or ErrStopped
func (d *Dispatcher) HandleIntent(data []byte) error {
	in, err := Decode(data)
	if err != nil {
		return err
	}
	return d.Dispatch(in)
}

// HandleUpload queues an import of an uploaded model.
//
// Parameters:
//   - res: the uploaded file
//
// Returns:
//   - error: ErrStopped if the dispatcher has stopped
func (d *Dispatcher) HandleUpload(res *loader.Resource) error {
	if res == nil {
		return errors.New("nil upload")
	}
	return d.Dispatch(ObjectImport{Resource: res})
}

// Apply runs in immediately. It must be called on the dispatcher goroutine, or in tests
// that never call Run. Undo and Redo walk the history; other intents go to their handler
// and are recorded when the handler returns a reverting intent.
//
// Parameters:
//   - in: the intent
//
// Returns:
//   - error: ErrUnknownIntent if no handler is registered, or the handler's error
func (d *Dispatcher) Apply(in Intent) error {
	switch in.(type) {
	case Undo:
		e, ok := d.history.popUndo()
		if !ok {
			return nil
		}
		if _, err := d.run(e.back); err != nil {
			return fmt.Errorf("undo %s: %w", e.do.Route(), err)
		}
		d.history.pushUndone(e)
		return nil
	case Redo:
		e, ok := d.history.popRedo()
		if !ok {
			return nil
		}
		if _, err := d.run(e.do); err != nil {
			return fmt.Errorf("redo %s: %w", e.do.Route(), err)
		}
		d.history.pushRedone(e)
		return nil
	}

	back, err := d.run(in)
	if err != nil {
		return err
	}
	if back != nil {
		d.history.Record(in, back)
	}
	return nil
}

func (d *Dispatcher) run(in Intent) (Intent, error) {
	d.mu.RLock()
	h, ok := d.handlers[in.Route()]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no handler for %q", ErrUnknownIntent, in.Route())
	}
	return h(in)
}

func (d *Dispatcher) report(in Intent, err error) {
	logger.Log.Warn("intent failed", zap.String("route", in.Route()), zap.Error(err))
	d.mu.RLock()
	onError := d.onError
	d.mu.RUnlock()
	if onError != nil {
		onError(in, err)
	}
}

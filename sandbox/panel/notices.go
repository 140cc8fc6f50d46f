package panel

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules with time.AfterFunc.
var RealScheduler Scheduler = realScheduler{}

// Notifier drives the loading and error notices of one container. Error notices dismiss
// themselves after the configured timeout.
type Notifier struct {
	container    Container
	sched        Scheduler
	errorTimeout time.Duration

	mu     *sync.Mutex
	timers map[string]Timer
}

// NewNotifier creates a Notifier for container.
//
// Parameters:
//   - container: the container the notices are shown in
//   - sched: the scheduler for error dismissal, RealScheduler outside tests
//   - errorTimeout: how long error notices stay
//
// Returns:
//   - *Notifier: the notifier
func NewNotifier(container Container, sched Scheduler, errorTimeout time.Duration) *Notifier {
	if container == nil {
		panic("panel: NewNotifier requires a container")
	}
	if sched == nil {
		sched = RealScheduler
	}
	return &Notifier{
		container:    container,
		sched:        sched,
		errorTimeout: errorTimeout,
		mu:           &sync.Mutex{},
		timers:       make(map[string]Timer),
	}
}

// Loading shows or updates a loading notice.
//
// Parameters:
//   - id: the notice id
//   - text: the message
//   - progress: the completed fraction, or -1 when unknown
func (n *Notifier) Loading(id, text string, progress float32) {
	n.stopTimer(id)
	n.container.ShowNotice(Notice{ID: id, Kind: NoticeLoading, Text: text, Progress: progress})
}

// Fail turns the notice id into an error notice that is dismissed after the error timeout.
//
// Parameters:
//   - id: the notice id
//   - text: the error message
func (n *Notifier) Fail(id, text string) {
	n.container.ShowNotice(Notice{ID: id, Kind: NoticeError, Text: text, Progress: -1})

	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
	}
	var timer Timer
	timer = n.sched.AfterFunc(n.errorTimeout, func() {
		n.mu.Lock()
		// a later Fail for the same id owns the notice now
		if n.timers[id] != timer {
			n.mu.Unlock()
			return
		}
		delete(n.timers, id)
		n.mu.Unlock()
		n.container.DismissNotice(id)
	})
	n.timers[id] = timer
}

// Done removes the notice id immediately.
//
// Parameters:
//   - id: the notice id
func (n *Notifier) Done(id string) {
	n.stopTimer(id)
	n.container.DismissNotice(id)
}

func (n *Notifier) stopTimer(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
}

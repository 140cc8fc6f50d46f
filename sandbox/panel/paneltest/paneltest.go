// Package paneltest provides in-memory panel containers and a manual scheduler for tests.
package paneltest

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/panel"
)

// Recorder is a panel.Container that keeps every rendered view and the live notices.
type Recorder struct {
	id string

	mu      sync.Mutex
	views   []json.RawMessage
	notices map[string]panel.Notice
	shown   []panel.Notice
}

var _ panel.Container = &Recorder{}

// NewRecorder creates a Recorder with the given id.
func NewRecorder(id string) *Recorder {
	return &Recorder{id: id, notices: make(map[string]panel.Notice)}
}

func (r *Recorder) ID() string {
	return r.id
}

// Render stores the JSON form of view, the same form the browser receives.
func (r *Recorder) Render(view any) {
	data, err := json.Marshal(view)
	if err != nil {
		panic(fmt.Sprintf("paneltest: view does not encode: %v", err))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, data)
}

func (r *Recorder) ShowNotice(n panel.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices[n.ID] = n
	r.shown = append(r.shown, n)
}

func (r *Recorder) DismissNotice(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notices, id)
}

// Renders returns how many times Render was called.
func (r *Recorder) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// LastView decodes the most recent view into v. It returns false if nothing was rendered.
func (r *Recorder) LastView(v any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return false
	}
	if err := json.Unmarshal(r.views[len(r.views)-1], v); err != nil {
		panic(fmt.Sprintf("paneltest: view does not decode: %v", err))
	}
	return true
}

// Notice returns the live notice with the given id.
func (r *Recorder) Notice(id string) (panel.Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notices[id]
	return n, ok
}

// Notices returns the live notices sorted by id.
func (r *Recorder) Notices() []panel.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]panel.Notice, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Shown returns every notice ever shown, in order.
func (r *Recorder) Shown() []panel.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]panel.Notice(nil), r.shown...)
}

// Host is a panel.Host backed by Recorders.
type Host map[string]*Recorder

var _ panel.Host = Host{}

// NewHost creates a Host with a Recorder for every id.
func NewHost(ids ...string) Host {
	h := make(Host, len(ids))
	for _, id := range ids {
		h[id] = NewRecorder(id)
	}
	return h
}

func (h Host) Container(id string) (panel.Container, error) {
	r, ok := h[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", panel.ErrMissingContainer, id)
	}
	return r, nil
}

// Scheduler is a panel.Scheduler driven by Advance instead of the wall clock.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

var _ panel.Scheduler = &Scheduler{}

type timer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
	s       *Scheduler
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) panel.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &timer{at: s.now + d, f: f, s: s}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that became due, in due order.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*timer
	pending := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.at <= s.now:
			t.fired = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.timers = pending
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending returns how many timers are waiting.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

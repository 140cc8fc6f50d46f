package intent

import "time"

// History keeps undo and redo stacks of property edits. It is owned by the dispatcher
// goroutine and is not safe for concurrent use.
type History struct {
	limit  int
	window time.Duration
	now    func() time.Time

	undo []entry
	redo []entry
}

type entry struct {
	key  string
	do   Intent
	back Intent
	at   time.Time
}

// NewHistory creates an empty History.
//
// Parameters:
//   - options: history options
//
// Returns:
//   - *History: the history
func NewHistory(options ...HistoryBuilderOption) *History {
	h := &History{
		limit:  100,
		window: 750 * time.Millisecond,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Record pushes an edit and the intent that reverts it, and clears the redo stack. An edit
// whose key matches the previous edit within the coalesce window replaces that edit's
// forward intent, so one slider drag undoes in one step.
//
// Parameters:
//   - do: the applied intent
//   - back: the intent that reverts it
func (h *History) Record(do, back Intent) {
	h.redo = h.redo[:0]
	now := h.now()
	key := ""
	if k, ok := do.(Keyed); ok {
		key = k.Key()
	}
	if n := len(h.undo); n > 0 && key != "" && h.window > 0 {
		last := &h.undo[n-1]
		if last.key == key && now.Sub(last.at) <= h.window {
			last.do = do
			last.at = now
			return
		}
	}
	h.undo = append(h.undo, entry{key: key, do: do, back: back, at: now})
	if len(h.undo) > h.limit {
		h.undo = append(h.undo[:0], h.undo[len(h.undo)-h.limit:]...)
	}
}

// CanUndo reports whether there is an edit to undo.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether there is an undone edit to re-apply.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

func (h *History) popUndo() (entry, bool) {
	n := len(h.undo)
	if n == 0 {
		return entry{}, false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	return e, true
}

func (h *History) popRedo() (entry, bool) {
	n := len(h.redo)
	if n == 0 {
		return entry{}, false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	return e, true
}

// pushUndone moves an undone edit to the redo stack. Its timestamp is cleared so a later
// edit never merges into it.
func (h *History) pushUndone(e entry) {
	e.at = time.Time{}
	h.redo = append(h.redo, e)
}

func (h *History) pushRedone(e entry) {
	e.at = time.Time{}
	h.undo = append(h.undo, e)
}

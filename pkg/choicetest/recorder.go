package choicetest

import (
	"sync"

	"github.com/vango-dev/choicegroup/pkg/choice"
)

// Recorder is a choice.Listener that records every change it receives.
// It is safe to read from another goroutine while a group notifies it.
type Recorder struct {
	mu      sync.Mutex
	changes []choice.Change
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ModelValueChanged implements choice.Listener.
func (r *Recorder) ModelValueChanged(c choice.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

// Count returns the number of recorded changes.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// Changes returns a copy of the recorded changes.
func (r *Recorder) Changes() []choice.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]choice.Change, len(r.changes))
	copy(out, r.changes)
	return out
}

// Values returns the Value of every recorded change, in order.
func (r *Recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Value
	}
	return out
}

// Last returns the most recent change and whether there was one.
func (r *Recorder) Last() (choice.Change, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return choice.Change{}, false
	}
	return r.changes[len(r.changes)-1], true
}

// Reset forgets all recorded changes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}

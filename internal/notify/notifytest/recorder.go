// Package notifytest provides an Enqueuer that records tasks for
// assertions.
package notifytest

import (
	"sync"

	"github.com/anonto42/newsflash/backend/internal/notify"
)

type Recorder struct {
	mu    sync.Mutex
	tasks []notify.Task
}

func (r *Recorder) Enqueue(task notify.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

// Tasks returns a copy of everything enqueued so far.
func (r *Recorder) Tasks() []notify.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Task(nil), r.tasks...)
}

// OfType returns the recorded tasks of the given type.
func (r *Recorder) OfType(typ string) []notify.Task {
	var out []notify.Task
	for _, t := range r.Tasks() {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = nil
}

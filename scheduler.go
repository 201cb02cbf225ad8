package panorama

import "time"

// TaskFunc is a per-frame callback. Returning false unschedules the task.
type TaskFunc func(now time.Time) bool

type task struct {
	id        uint32
	name      string
	fn        TaskFunc
	cancelled bool
}

// Scheduler runs recurring tasks once per frame, in the order they were
// scheduled. Tasks scheduled while a frame is running first run on the next
// frame. There is no global scheduler; the host calls RunFrame itself.
type Scheduler struct {
	tasks  []*task
	nextID uint32
}

// TaskHandle allows cancelling a scheduled task.
type TaskHandle struct {
	id uint32
	s  *Scheduler
}

// Cancel unschedules the task. Cancelling twice, or cancelling a task that
// already finished, is a no-op.
func (h TaskHandle) Cancel() {
	if h.s == nil {
		return
	}
	for _, t := range h.s.tasks {
		if t.id == h.id {
			t.cancelled = true
			return
		}
	}
}

// Active reports whether the task is still scheduled.
func (h TaskHandle) Active() bool {
	if h.s == nil {
		return false
	}
	for _, t := range h.s.tasks {
		if t.id == h.id {
			return !t.cancelled
		}
	}
	return false
}

// Schedule registers fn to run every frame until it returns false or its
// handle is cancelled.
func (s *Scheduler) Schedule(name string, fn TaskFunc) TaskHandle {
	s.nextID++
	s.tasks = append(s.tasks, &task{id: s.nextID, name: name, fn: fn})
	return TaskHandle{id: s.nextID, s: s}
}

// RunFrame runs every live task once and returns how many ran.
func (s *Scheduler) RunFrame(now time.Time) int {
	n := len(s.tasks)
	ran := 0
	for i := 0; i < n && i < len(s.tasks); i++ {
		t := s.tasks[i]
		if t == nil || t.cancelled {
			continue
		}
		ran++
		if !t.fn(now) {
			t.cancelled = true
		}
	}
	s.compact()
	return ran
}

// CancelAll unschedules every task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.cancelled = true
	}
	s.compact()
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Names returns the names of the live tasks in run order.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.cancelled {
			names = append(names, t.name)
		}
	}
	return names
}

// compact removes cancelled tasks in place.
func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}

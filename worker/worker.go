// Package worker runs deferred work on a single background goroutine.
//
// The scheduling contract is narrow: a Task is at most once outstanding
// (scheduling an already queued or running task is a no-op), and
// cancellation waits for an executing task to finish instead of
// interrupting it. After CancelSync returns, the task body is not in
// flight.
package worker

import "sync"

type taskState int

const (
	taskIdle taskState = iota
	taskQueued
	taskRunning
)

// A Task is a unit of deferred work. Create it once and schedule it as
// often as needed; the worker guarantees single-instance execution.
type Task struct {
	f func()

	// state and owner are guarded by the owning worker's mutex.
	state taskState
	owner *Worker
}

// NewTask creates a task that runs f when dispatched.
func NewTask(f func()) *Task {
	if f == nil {
		panic("worker: task function must not be nil")
	}

	return &Task{f: f}
}

// A Scheduler accepts tasks for deferred execution. It is the contract the
// power-management layers consume; Worker is the production implementation.
type Scheduler interface {
	// Schedule queues the task unless it is already queued or running.
	// It reports whether the task was newly queued.
	Schedule(t *Task) bool

	// CancelSync removes the task from the queue, or, if the task is
	// currently executing, waits for it to finish. On return the task is
	// neither queued nor running. It reports whether there was anything
	// to cancel or wait for.
	CancelSync(t *Task) bool
}

// A Worker drains scheduled tasks in submission order on one goroutine.
type Worker struct {
	name string

	mu      sync.Mutex
	newWork *sync.Cond
	settled *sync.Cond
	queue   []*Task

	stopping bool
	done     chan struct{}
}

// New creates a worker and starts its goroutine.
func New(name string) *Worker {
	w := &Worker{
		name: name,
		done: make(chan struct{}),
	}
	w.newWork = sync.NewCond(&w.mu)
	w.settled = sync.NewCond(&w.mu)

	go w.run()

	return w
}

// Name returns the name of the worker.
func (w *Worker) Name() string {
	return w.name
}

// Schedule queues the task unless it is already queued or running. A task
// belongs to the first worker it is scheduled on; scheduling it on another
// worker is a programmer error.
func (w *Worker) Schedule(t *Task) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopping {
		return false
	}

	w.mustOwn(t)

	if t.state != taskIdle {
		return false
	}

	t.owner = w
	t.state = taskQueued
	w.queue = append(w.queue, t)
	w.newWork.Signal()

	return true
}

// CancelSync removes the task from the queue, or waits for it if it is
// executing. On return the task is idle: not queued and not running, even
// if another goroutine kept rescheduling it while we waited.
func (w *Worker) CancelSync(t *Task) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t.owner == nil {
		return false
	}

	w.mustOwn(t)

	cancelled := false
	for t.state != taskIdle {
		cancelled = true

		if t.state == taskQueued {
			w.removeQueued(t)
			t.state = taskIdle
			w.settled.Broadcast()
			break
		}

		w.settled.Wait()
	}

	return cancelled
}

// Stop waits for the in-flight task, discards anything still queued, and
// shuts the goroutine down. The worker accepts no tasks afterwards.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopping {
		w.mu.Unlock()
		<-w.done
		return
	}

	w.stopping = true

	for _, t := range w.queue {
		t.state = taskIdle
	}
	w.queue = nil

	w.newWork.Signal()
	w.settled.Broadcast()
	w.mu.Unlock()

	<-w.done
}

func (w *Worker) run() {
	w.mu.Lock()

	for {
		for len(w.queue) == 0 && !w.stopping {
			w.newWork.Wait()
		}

		if w.stopping {
			break
		}

		t := w.queue[0]
		w.queue = w.queue[1:]
		t.state = taskRunning

		w.mu.Unlock()
		t.f()
		w.mu.Lock()

		t.state = taskIdle
		w.settled.Broadcast()
	}

	w.mu.Unlock()
	close(w.done)
}

func (w *Worker) removeQueued(t *Task) {
	for i, queued := range w.queue {
		if queued == t {
			w.queue = append(w.queue[:i], w.queue[i+1:]...)
			return
		}
	}

	panic("worker: queued task not found in queue")
}

func (w *Worker) mustOwn(t *Task) {
	if t.owner != nil && t.owner != w {
		panic("worker: task is owned by another worker")
	}
}

var _ Scheduler = (*Worker)(nil)

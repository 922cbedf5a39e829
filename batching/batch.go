// batch.go
//
// Defines the Batch struct: the ordered set of tasks a scheduler has
// chosen to dispatch together in a single engine call.

package batching

import "sync"

// Batch collects tasks until the owning scheduler closes it. After Close,
// the task list is frozen; the batch processor may then read it without
// further coordination. WaitUntilClosed provides the handoff point for
// schedulers that hand a batch to a worker before the close has
// propagated.
type Batch struct {
	mu     sync.Mutex
	tasks  []*Task
	size   int
	closed chan struct{}
}

// NewBatch creates an open, empty batch.
func NewBatch() *Batch {
	return &Batch{closed: make(chan struct{})}
}

// Add appends a task. Must not be called after Close.
func (b *Batch) Add(t *Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.closed:
		panic("batching: Add on a closed batch")
	default:
	}
	b.tasks = append(b.tasks, t)
	b.size += t.Size()
}

// Close freezes the task list. No further Adds are permitted. Closing an
// already-closed batch is a programmer error.
func (b *Batch) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	close(b.closed)
}

// WaitUntilClosed blocks until Close has been called.
func (b *Batch) WaitUntilClosed() {
	<-b.closed
}

// NumTasks returns the number of tasks currently in the batch.
func (b *Batch) NumTasks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// Task returns the i-th task in scheduler-presentation order.
func (b *Batch) Task(i int) *Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks[i]
}

// Size returns the sum of the tasks' dim-0 sizes: the batch's total row
// count before padding.
func (b *Batch) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Empty reports whether the batch holds no tasks.
func (b *Batch) Empty() bool {
	return b.NumTasks() == 0
}

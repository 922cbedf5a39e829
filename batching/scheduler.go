// scheduler.go
//
// The batch scheduler contract consumed by the batching session, and the
// stock size/time scheduler: tasks accumulate in an open batch which is
// sealed when full or when its timeout fires, then handed to worker
// goroutines that invoke the process-batch callback.

package batching

import (
	"fmt"
	"sync"
	"time"
)

// ProcessBatchCallback consumes ownership of a closed batch. A scheduler
// invokes it exactly once per batch, on a scheduler-owned goroutine.
type ProcessBatchCallback func(batch *Batch)

// Scheduler accepts tasks and groups them into batches. Schedule may fail
// synchronously (for example when the pending queue is full); on success
// the task joins exactly one batch whose callback will be invoked once.
type Scheduler interface {
	Schedule(task *Task) error
}

// SchedulerCreator constructs a scheduler bound to a process-batch
// callback. The session factory supplies the callback.
type SchedulerCreator func(callback ProcessBatchCallback) (Scheduler, error)

// BasicSchedulerOptions configures a BasicScheduler.
type BasicSchedulerOptions struct {
	// MaxBatchSize bounds a batch's total row count. Required, > 0.
	MaxBatchSize int

	// BatchTimeout is how long an open batch waits for more tasks before
	// it is sealed anyway. Zero seals after the first task.
	BatchTimeout time.Duration

	// MaxEnqueuedBatches bounds the sealed-but-unprocessed queue. New
	// batches are rejected once it is reached. Zero means the default.
	MaxEnqueuedBatches int

	// NumBatchThreads is the number of worker goroutines draining sealed
	// batches. Zero means one.
	NumBatchThreads int
}

const defaultMaxEnqueuedBatches = 10

// Creator returns a SchedulerCreator that builds a BasicScheduler with
// these options.
func (o BasicSchedulerOptions) Creator() SchedulerCreator {
	return func(callback ProcessBatchCallback) (Scheduler, error) {
		return NewBasicScheduler(o, callback)
	}
}

// BasicScheduler is the stock Scheduler: FIFO within one signature, sealing
// batches by size or timeout, draining them on a small worker pool.
type BasicScheduler struct {
	opts     BasicSchedulerOptions
	callback ProcessBatchCallback

	mu        sync.Mutex
	cond      *sync.Cond // signaled once per sealed batch, broadcast on Stop
	open      *Batch
	openTimer *time.Timer
	queue     []*Batch
	stopped   bool

	wg sync.WaitGroup
}

// NewBasicScheduler validates the options, starts the worker pool, and
// returns the scheduler. The callback must be non-nil.
func NewBasicScheduler(opts BasicSchedulerOptions, callback ProcessBatchCallback) (*BasicScheduler, error) {
	if opts.MaxBatchSize <= 0 {
		return nil, fmt.Errorf("%w: max batch size must be positive, got %d", ErrInvalidConfiguration, opts.MaxBatchSize)
	}
	if opts.BatchTimeout < 0 {
		return nil, fmt.Errorf("%w: batch timeout must be non-negative, got %v", ErrInvalidConfiguration, opts.BatchTimeout)
	}
	if callback == nil {
		return nil, fmt.Errorf("%w: process-batch callback is required", ErrInvalidConfiguration)
	}
	if opts.MaxEnqueuedBatches <= 0 {
		opts.MaxEnqueuedBatches = defaultMaxEnqueuedBatches
	}
	if opts.NumBatchThreads <= 0 {
		opts.NumBatchThreads = 1
	}
	s := &BasicScheduler{
		opts:     opts,
		callback: callback,
	}
	s.cond = sync.NewCond(&s.mu)
	for i := 0; i < opts.NumBatchThreads; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s, nil
}

// Schedule adds a task to the open batch, sealing and rolling over as
// needed. Fails with ErrInvalidArgument if the task alone exceeds
// MaxBatchSize, and with ErrUnavailable if a new batch is needed but the
// pending queue is full or the scheduler is stopped.
func (s *BasicScheduler) Schedule(task *Task) error {
	if task.Size() > s.opts.MaxBatchSize {
		return fmt.Errorf("%w: task size %d exceeds max batch size %d",
			ErrInvalidArgument, task.Size(), s.opts.MaxBatchSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("%w: scheduler is stopped", ErrUnavailable)
	}
	if s.open != nil && s.open.Size()+task.Size() > s.opts.MaxBatchSize {
		s.sealLocked()
	}
	if s.open == nil {
		if len(s.queue) >= s.opts.MaxEnqueuedBatches {
			return fmt.Errorf("%w: %d batches already enqueued", ErrUnavailable, len(s.queue))
		}
		s.open = NewBatch()
	}
	s.open.Add(task)
	if s.open.Size() >= s.opts.MaxBatchSize {
		s.sealLocked()
	} else if s.openTimer == nil {
		b := s.open
		s.openTimer = time.AfterFunc(s.opts.BatchTimeout, func() { s.sealIfOpen(b) })
	}
	return nil
}

// Stop seals the open batch, waits for the workers to drain the queue, and
// joins them. Every accepted task still gets its callback. Schedule calls
// after Stop fail.
func (s *BasicScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.open != nil {
		s.sealLocked()
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	s.wg.Wait()
}

// sealLocked closes the open batch and hands it to the workers. Caller
// holds s.mu.
func (s *BasicScheduler) sealLocked() {
	if s.openTimer != nil {
		s.openTimer.Stop()
		s.openTimer = nil
	}
	b := s.open
	s.open = nil
	b.Close()
	s.queue = append(s.queue, b)
	s.cond.Signal()
}

// sealIfOpen is the timeout path: seal b only if it is still the open
// batch (it may have been sealed by size in the meantime).
func (s *BasicScheduler) sealIfOpen(b *Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == b {
		s.sealLocked()
	}
}

// worker takes one batch per wakeup, so sealed batches spread across the
// pool instead of one goroutine draining the whole queue. Workers exit
// once the scheduler is stopped and the queue is empty.
func (s *BasicScheduler) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 {
			if s.stopped {
				s.mu.Unlock()
				return
			}
			s.cond.Wait()
		}
		b := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.callback(b)
	}
}

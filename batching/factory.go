// factory.go
//
// Constructors for BatchingSession: the general path taking one scheduler
// creator per signature, and the single-signature convenience path with
// its extra configuration validation.

package batching

import (
	"fmt"
	"io"
)

// SignatureWithSchedulerCreator pairs one declared signature with the
// creator for the scheduler that will serve it.
type SignatureWithSchedulerCreator struct {
	Signature Signature
	Creator   SchedulerCreator
}

// New constructs a BatchingSession over 'wrapped'. For each declared
// signature it invokes the creator with a callback that binds the
// signature and forwards closed batches to the session's processor. The
// session takes ownership of the wrapped engine and every scheduler.
func New(opts Options, wrapped Session, creators []SignatureWithSchedulerCreator) (*BatchingSession, error) {
	if wrapped == nil {
		return nil, fmt.Errorf("%w: wrapped session is required", ErrInvalidConfiguration)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	session := &BatchingSession{
		opts:       opts,
		wrapped:    wrapped,
		schedulers: make(map[Signature]Scheduler, len(creators)),
	}
	for _, entry := range creators {
		signature := entry.Signature
		scheduler, err := entry.Creator(func(batch *Batch) {
			session.processBatch(signature, batch)
		})
		if err != nil {
			return nil, err
		}
		session.schedulers[signature] = scheduler
	}
	return session, nil
}

// NewBasic constructs a BatchingSession batching exactly one signature on a
// BasicScheduler. When allowed batch sizes are configured, the last entry
// must equal the scheduler's max batch size, otherwise a batch could form
// that no allowed size covers and the rounding policy would be silently
// disabled.
func NewBasic(schedulerOpts BasicSchedulerOptions, opts Options, signature Signature, wrapped Session) (*BatchingSession, error) {
	if n := len(opts.AllowedBatchSizes); n > 0 {
		if last := opts.AllowedBatchSizes[n-1]; last != schedulerOpts.MaxBatchSize {
			return nil, fmt.Errorf("%w: last entry in allowed batch sizes must match max batch size; last entry was %d, expected %d",
				ErrInvalidConfiguration, last, schedulerOpts.MaxBatchSize)
		}
	}
	return New(opts, wrapped, []SignatureWithSchedulerCreator{
		{Signature: signature, Creator: schedulerOpts.Creator()},
	})
}

// Close stops every scheduler, completing any in-flight batches, and then
// closes the wrapped engine if it supports closing. Schedulers stop before
// the engine is released because their workers call into it.
func (s *BatchingSession) Close() error {
	for _, scheduler := range s.schedulers {
		if stoppable, ok := scheduler.(interface{ Stop() }); ok {
			stoppable.Stop()
		}
	}
	if closer, ok := s.wrapped.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

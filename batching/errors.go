// errors.go
//
// Error kinds surfaced by the batching layer. Specific failures wrap one of
// these sentinels with %w so callers can classify with errors.Is. Errors
// returned by the wrapped engine are passed through unwrapped.

package batching

import "errors"

var (
	// ErrInvalidConfiguration marks calls or factory arguments the layer is
	// not configured to serve: non-empty target node lists, or a basic
	// factory whose allowed batch sizes disagree with the scheduler.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument marks malformed submissions: empty input lists,
	// scalar input tensors, or input tensors disagreeing on dim-0 size.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFailedPrecondition marks engine outputs that cannot be split back
	// to callers: scalar outputs, or dim-0 not matching the batch total.
	ErrFailedPrecondition = errors.New("failed precondition")

	// ErrInternal marks invariant violations inside merge/split that
	// submission-time checks should have made unreachable.
	ErrInternal = errors.New("internal")

	// ErrUnavailable marks synchronous scheduler rejections, e.g. the
	// pending batch queue is full.
	ErrUnavailable = errors.New("unavailable")
)

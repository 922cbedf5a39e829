// task.go
//
// Defines the Task struct representing one caller's pending request inside
// the batching pipeline, from submission until its completion fires.

package batching

import (
	"github.com/batchserve/batchserve/batching/tensor"
)

// NamedTensor is one (tensor name, tensor) input pair, matching the
// wrapped engine's input format.
type NamedTensor struct {
	Name   string
	Tensor *tensor.Tensor
}

// Task is one in-flight Run call. The calling goroutine creates it, a
// scheduler places it into exactly one batch, and the batch processor
// writes its Outputs and Err slots before firing completion. Inputs and
// OutputNames are borrowed from the caller; they stay valid because the
// caller blocks on Done until the processor has finished with them.
type Task struct {
	// Inputs is the caller's input pair list.
	Inputs []NamedTensor

	// OutputNames is the caller's requested output order. Outputs is
	// populated in exactly this order.
	OutputNames []string

	// ZerothDimSize is the number of examples this task contributes to a
	// batch: the shared dim-0 size of all its input tensors, computed at
	// submission time.
	ZerothDimSize int

	// Outputs and Err are written only by the batch processor, before Done
	// fires; afterwards they are read only by the owning caller.
	Outputs []*tensor.Tensor
	Err     error

	done chan struct{}
}

func newTask(inputs []NamedTensor, outputNames []string, zerothDimSize int) *Task {
	return &Task{
		Inputs:        inputs,
		OutputNames:   outputNames,
		ZerothDimSize: zerothDimSize,
		done:          make(chan struct{}),
	}
}

// Size returns the task's contribution to a batch's total row count.
func (t *Task) Size() int { return t.ZerothDimSize }

// Done returns the completion channel. It is closed exactly once, after
// Outputs and Err hold their final values.
func (t *Task) Done() <-chan struct{} { return t.done }

// finish records the terminal status and fires completion. Must be called
// exactly once, by the batch processor.
func (t *Task) finish(err error) {
	t.Err = err
	close(t.done)
}

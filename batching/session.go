// session.go
//
// The BatchingSession façade and its batch processor. The façade exposes
// the same Run contract as the wrapped engine; internally it routes each
// call to the scheduler declared for the call's signature and blocks the
// caller until the processed batch completes.

package batching

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/batchserve/batchserve/batching/tensor"
)

// Session is the synchronous run contract shared by the wrapped engine and
// the batching façade: named input tensors in, requested output tensors
// out. targetNames selects side-effecting graph nodes to run; the batching
// path never uses them.
type Session interface {
	Run(inputs []NamedTensor, outputNames []string, targetNames []string) ([]*tensor.Tensor, error)
}

// BatchingSession fronts a wrapped Session and transparently coalesces
// concurrent Run calls that share a declared signature into larger batched
// engine calls. Calls whose signature was not declared pass through to the
// wrapped engine unbatched.
//
// The signature map is immutable after construction; concurrent Run calls
// need no coordination beyond each task's completion channel.
type BatchingSession struct {
	opts       Options
	wrapped    Session
	schedulers map[Signature]Scheduler
	metrics    Metrics
}

var _ Session = (*BatchingSession)(nil)

// Run mirrors the wrapped engine's call. Target nodes are unsupported on
// the batching path. If the call's signature matches a declared one, the
// call is packaged as a task, scheduled, and the caller blocks until the
// batch containing it has been processed; otherwise the call is forwarded
// to the wrapped engine in-line.
func (s *BatchingSession) Run(inputs []NamedTensor, outputNames []string, targetNames []string) ([]*tensor.Tensor, error) {
	if len(targetNames) > 0 {
		return nil, fmt.Errorf("%w: batching session does not support target nodes", ErrInvalidConfiguration)
	}

	signature := signatureFromRunArgs(inputs, outputNames)
	scheduler, ok := s.schedulers[signature]
	if !ok {
		// A Run call that doesn't match any batching signature. Run it
		// in-line, unbatched.
		logrus.Warnf("request doesn't match any declared signature, bypassing batcher: %s", signature)
		s.metrics.PassThroughCalls.Add(1)
		return s.wrapped.Run(inputs, outputNames, targetNames)
	}

	size, err := computeInputSize(inputs)
	if err != nil {
		return nil, err
	}
	task := newTask(inputs, outputNames, size)
	if err := scheduler.Schedule(task); err != nil {
		return nil, err
	}
	<-task.Done()
	return task.Outputs, task.Err
}

// Metrics returns a snapshot of the session's counters.
func (s *BatchingSession) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// computeInputSize returns the shared dim-0 size of the inputs: the number
// of examples the call contributes to a batch. Every input must have at
// least one dimension and all must agree on the dim-0 size.
func computeInputSize(inputs []NamedTensor) (int, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: batching session Run() must have at least one input tensor", ErrInvalidArgument)
	}
	size := -1
	for _, entry := range inputs {
		if entry.Tensor.Dims() == 0 {
			return 0, fmt.Errorf("%w: batching session Run() input tensors must have at least one dimension", ErrInvalidArgument)
		}
		thisSize := entry.Tensor.DimSize(0)
		if size == -1 {
			size = thisSize
		} else if thisSize != size {
			return 0, fmt.Errorf("%w: batching session Run() input tensors must have equal 0th-dimension size", ErrInvalidArgument)
		}
	}
	return size, nil
}

// roundToLowestAllowedBatchSize returns the smallest allowed batch size
// that is >= batchSize, or batchSize itself when no sizes are configured.
// A batch larger than every allowed size indicates a scheduler configured
// past the allowed sizes; the size is used unrounded.
func (s *BatchingSession) roundToLowestAllowedBatchSize(batchSize int) int {
	if len(s.opts.AllowedBatchSizes) == 0 {
		return batchSize
	}
	for _, allowed := range s.opts.AllowedBatchSizes {
		if allowed >= batchSize {
			return allowed
		}
	}
	logrus.Errorf("batch size %d greater than largest allowed size; ignoring allowed sizes constraint", batchSize)
	return batchSize
}

// processBatch handles one closed batch of Run calls sharing 'signature'.
// Invoked by a scheduler on one of its worker goroutines. Whatever
// happens, every task's status is populated and its completion fired
// exactly once before this returns.
func (s *BatchingSession) processBatch(signature Signature, batch *Batch) {
	batch.WaitUntilClosed()

	if batch.Empty() {
		return
	}

	var err error
	defer func() {
		// Counters settle before any completion fires, so a released
		// caller observes them up to date.
		s.metrics.BatchesProcessed.Add(1)
		s.metrics.TasksCompleted.Add(int64(batch.NumTasks()))
		if err != nil {
			s.metrics.FailedBatches.Add(1)
		}
		for i := 0; i < batch.NumTasks(); i++ {
			batch.Task(i).finish(err)
		}
	}()
	s.metrics.PaddingRows.Add(int64(s.roundToLowestAllowedBatchSize(batch.Size()) - batch.Size()))

	var mergedInputs []NamedTensor
	mergedInputs, err = s.mergeInputTensors(signature, batch)
	if err != nil {
		return
	}

	// Freeze the output order once; the engine call and the split below
	// must agree on it.
	outputNames := signature.OutputNames()
	var combinedOutputs []*tensor.Tensor
	combinedOutputs, err = s.wrapped.Run(mergedInputs, outputNames, nil)
	if err != nil {
		return
	}

	err = s.splitOutputTensors(outputNames, combinedOutputs, batch)
}

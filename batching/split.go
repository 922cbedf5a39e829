// split.go
//
// Distributes the wrapped engine's combined outputs back to the tasks in a
// batch, slicing along dimension 0 and discarding padding rows.

package batching

import (
	"fmt"

	"github.com/batchserve/batchserve/batching/tensor"
)

// splitOutputTensors slices each combined output by the per-task row counts
// (plus one trailing padding piece when rows were added) and appends to
// every task the pieces for the outputs it requested, in the order it
// requested them. outputNames is the frozen signature order the engine was
// called with; combinedOutputs[i] corresponds to outputNames[i].
//
// The batch must be closed and non-empty.
func (s *BatchingSession) splitOutputTensors(outputNames []string, combinedOutputs []*tensor.Tensor, batch *Batch) error {
	numTasks := batch.NumTasks()
	if numTasks < 1 {
		return fmt.Errorf("%w: batch size expected to be positive, was %d", ErrInternal, numTasks)
	}

	taskSizesPlusOptionalPadding := make([]int, 0, numTasks+1)
	for i := 0; i < numTasks; i++ {
		taskSizesPlusOptionalPadding = append(taskSizesPlusOptionalPadding, batch.Task(i).Size())
	}
	paddingSize := s.roundToLowestAllowedBatchSize(batch.Size()) - batch.Size()
	if paddingSize > 0 {
		taskSizesPlusOptionalPadding = append(taskSizesPlusOptionalPadding, paddingSize)
	}

	if len(combinedOutputs) != len(outputNames) {
		return fmt.Errorf("%w: wrong number of batched output tensors: got %d, want %d",
			ErrInternal, len(combinedOutputs), len(outputNames))
	}

	// Per output name, one piece per task (plus the ignored padding piece).
	splitTensors := make(map[string][]*tensor.Tensor, len(outputNames))
	for i, name := range outputNames {
		combined := combinedOutputs[i]
		if combined.Dims() == 0 {
			return fmt.Errorf("%w: batched output tensor %q has 0 dimensions", ErrFailedPrecondition, name)
		}
		if combined.DimSize(0) != batch.Size()+paddingSize {
			return fmt.Errorf("%w: batched output tensor %q has dim-0 size %d, want %d",
				ErrFailedPrecondition, name, combined.DimSize(0), batch.Size()+paddingSize)
		}
		pieces, err := tensor.Split(combined, taskSizesPlusOptionalPadding)
		if err != nil {
			return fmt.Errorf("%w: splitting output %q: %v", ErrInternal, name, err)
		}
		splitTensors[name] = pieces
	}

	for i := 0; i < numTasks; i++ {
		task := batch.Task(i)
		for _, name := range task.OutputNames {
			pieces, ok := splitTensors[name]
			if !ok {
				return fmt.Errorf("%w: task does not conform to batch signature", ErrInternal)
			}
			task.Outputs = append(task.Outputs, pieces[i])
		}
	}
	// The trailing padding piece, when present, is dropped on the floor.

	return nil
}

// merge.go
//
// Builds the single merged input list for one closed batch: every task's
// tensors concatenated per input name along dimension 0, padded up to the
// nearest allowed batch size with replicated rows.

package batching

import (
	"fmt"

	"github.com/batchserve/batchserve/batching/tensor"
)

// mergeInputTensors concatenates the batch's per-task inputs into one input
// list ordered by the signature's frozen input-name order. If the rounding
// policy asks for more rows than the batch holds, the last task's first row
// is replicated (as a zero-copy slice) to fill the gap; the engine then
// only ever sees rows that were valid inputs.
//
// The batch must be closed and non-empty.
func (s *BatchingSession) mergeInputTensors(sig Signature, batch *Batch) ([]NamedTensor, error) {
	numTasks := batch.NumTasks()
	if numTasks < 1 {
		return nil, fmt.Errorf("%w: batch size expected to be positive, was %d", ErrInternal, numTasks)
	}

	paddingSize := s.roundToLowestAllowedBatchSize(batch.Size()) - batch.Size()

	// Per input name, the tensors to concatenate, in task order.
	tensorsToMerge := make(map[string][]*tensor.Tensor)
	for i := 0; i < numTasks; i++ {
		last := i == numTasks-1
		for _, entry := range batch.Task(i).Inputs {
			tensorsToMerge[entry.Name] = append(tensorsToMerge[entry.Name], entry.Tensor)

			if last && paddingSize > 0 {
				// Pad with the first row of the last task's tensor: a known
				// valid example row, and a slice rather than a copy.
				padding, err := entry.Tensor.SliceRows(0, 1)
				if err != nil {
					return nil, fmt.Errorf("%w: slicing padding row: %v", ErrInternal, err)
				}
				for p := 0; p < paddingSize; p++ {
					tensorsToMerge[entry.Name] = append(tensorsToMerge[entry.Name], padding)
				}
			}
		}
	}

	inputNames := sig.InputNames()
	if len(tensorsToMerge) != len(inputNames) {
		return nil, fmt.Errorf("%w: one or more tasks does not conform to batch signature", ErrInternal)
	}
	merged := make([]NamedTensor, 0, len(inputNames))
	for _, name := range inputNames {
		ts, ok := tensorsToMerge[name]
		if !ok {
			return nil, fmt.Errorf("%w: one or more tasks does not conform to batch signature", ErrInternal)
		}
		t, err := tensor.Concat(ts...)
		if err != nil {
			return nil, fmt.Errorf("%w: concatenating input %q: %v", ErrInvalidArgument, name, err)
		}
		merged = append(merged, NamedTensor{Name: name, Tensor: t})
	}
	return merged, nil
}

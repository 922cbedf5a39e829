package batching

import (
	"fmt"
	"sync"
	"testing"

	"github.com/batchserve/batchserve/batching/tensor"
)

// column builds an [len(vals), 1] tensor, the shape used throughout the
// scenario tests.
func column(t *testing.T, vals ...float32) *tensor.Tensor {
	t.Helper()
	data := make([]float32, len(vals))
	copy(data, vals)
	tn, err := tensor.New([]int{len(vals), 1}, data)
	if err != nil {
		t.Fatalf("column tensor: %v", err)
	}
	return tn
}

func mustTensor(t *testing.T, shape []int, data []float32) *tensor.Tensor {
	t.Helper()
	tn, err := tensor.New(shape, data)
	if err != nil {
		t.Fatalf("tensor.New(%v): %v", shape, err)
	}
	return tn
}

// engineCall records one Run invocation on the fake engine.
type engineCall struct {
	inputs      []NamedTensor
	outputNames []string
	targetNames []string
}

// scaleEngine is a deterministic wrapped-engine double. For each requested
// output name it scales the first input tensor element-wise: "y" doubles,
// "z" triples. It records every call so tests can assert on merged shapes
// and frozen output order.
type scaleEngine struct {
	mu    sync.Mutex
	calls []engineCall
	err   error // returned from every Run when non-nil
}

func (e *scaleEngine) Run(inputs []NamedTensor, outputNames []string, targetNames []string) ([]*tensor.Tensor, error) {
	e.mu.Lock()
	e.calls = append(e.calls, engineCall{inputs: inputs, outputNames: outputNames, targetNames: targetNames})
	err := e.err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("scaleEngine: no inputs")
	}
	x := inputs[0].Tensor
	outputs := make([]*tensor.Tensor, 0, len(outputNames))
	for _, name := range outputNames {
		var factor float32
		switch name {
		case "y":
			factor = 2
		case "z":
			factor = 3
		default:
			return nil, fmt.Errorf("scaleEngine: unknown output %q", name)
		}
		data := make([]float32, x.NumElements())
		for i, v := range x.Data() {
			data[i] = factor * v
		}
		out, err := tensor.New(x.Shape(), data)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (e *scaleEngine) numCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *scaleEngine) call(i int) engineCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[i]
}

// closedBatch builds an already-closed batch from tasks, for driving the
// merger/splitter/processor directly.
func closedBatch(tasks ...*Task) *Batch {
	b := NewBatch()
	for _, task := range tasks {
		b.Add(task)
	}
	b.Close()
	return b
}

// sessionWithAllowedSizes builds a bare session for unit-testing merge,
// split, and rounding without any scheduler attached.
func sessionWithAllowedSizes(engine Session, sizes ...int) *BatchingSession {
	return &BatchingSession{
		opts:       Options{AllowedBatchSizes: sizes},
		wrapped:    engine,
		schedulers: map[Signature]Scheduler{},
	}
}

// tensor.go
//
// Dense row-major float32 tensors with the three operations the batching
// layer needs: zero-copy row slicing, concatenation along dimension 0, and
// splitting along dimension 0.

package tensor

import (
	"fmt"
)

// Tensor is a dense float32 tensor stored in row-major order.
//
// Views produced by SliceRows and Split share backing storage with their
// parent; mutating one mutates the other. The batching layer only ever
// reads through views, so sharing is safe there.
type Tensor struct {
	shape []int
	data  []float32
}

// New creates a tensor with the given shape and backing data. The data
// length must equal the product of the dimension sizes. A nil or empty
// shape denotes a scalar (rank 0, exactly one element). The data slice is
// retained, not copied.
func New(shape []int, data []float32) (*Tensor, error) {
	n := 1
	for i, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("tensor: dimension %d has negative size %d", i, d)
		}
		n *= d
	}
	if len(data) != n {
		return nil, fmt.Errorf("tensor: shape %v requires %d elements, got %d", shape, n, len(data))
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Tensor{shape: s, data: data}, nil
}

// Dims returns the rank of the tensor.
func (t *Tensor) Dims() int { return len(t.shape) }

// DimSize returns the size of dimension i.
func (t *Tensor) DimSize(i int) int { return t.shape[i] }

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	s := make([]int, len(t.shape))
	copy(s, t.shape)
	return s
}

// Data returns the backing slice. Shared with views.
func (t *Tensor) Data() []float32 { return t.data }

// NumElements returns the total element count.
func (t *Tensor) NumElements() int { return len(t.data) }

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v)", t.shape)
}

// rowStride returns the number of elements in one row (one index along
// dimension 0). Requires rank >= 1.
func (t *Tensor) rowStride() int {
	n := 1
	for _, d := range t.shape[1:] {
		n *= d
	}
	return n
}

// SliceRows returns a view of rows [start, end) along dimension 0. The view
// keeps the tensor's rank and shares backing storage; no data is copied.
func (t *Tensor) SliceRows(start, end int) (*Tensor, error) {
	if t.Dims() == 0 {
		return nil, fmt.Errorf("tensor: cannot slice rows of a scalar")
	}
	if start < 0 || end < start || end > t.shape[0] {
		return nil, fmt.Errorf("tensor: row range [%d, %d) out of bounds for dim-0 size %d", start, end, t.shape[0])
	}
	shape := t.Shape()
	shape[0] = end - start
	stride := t.rowStride()
	return &Tensor{shape: shape, data: t.data[start*stride : end*stride]}, nil
}

// Concat concatenates tensors along dimension 0. All tensors must have
// rank >= 1 and identical trailing shapes. The result owns fresh storage.
func Concat(ts ...*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("tensor: concat of zero tensors")
	}
	first := ts[0]
	if first.Dims() == 0 {
		return nil, fmt.Errorf("tensor: cannot concat scalars")
	}
	rows := 0
	total := 0
	for _, t := range ts {
		if t.Dims() != first.Dims() {
			return nil, fmt.Errorf("tensor: concat rank mismatch: %v vs %v", first.shape, t.shape)
		}
		for i := 1; i < first.Dims(); i++ {
			if t.shape[i] != first.shape[i] {
				return nil, fmt.Errorf("tensor: concat trailing shape mismatch: %v vs %v", first.shape, t.shape)
			}
		}
		rows += t.shape[0]
		total += len(t.data)
	}
	data := make([]float32, 0, total)
	for _, t := range ts {
		data = append(data, t.data...)
	}
	shape := first.Shape()
	shape[0] = rows
	return &Tensor{shape: shape, data: data}, nil
}

// Split divides a tensor along dimension 0 into len(sizes) views whose
// dim-0 sizes are the given sizes. The sizes must be non-negative and sum
// to the tensor's dim-0 size. The returned tensors share backing storage
// with the input.
func Split(t *Tensor, sizes []int) ([]*Tensor, error) {
	if t.Dims() == 0 {
		return nil, fmt.Errorf("tensor: cannot split a scalar")
	}
	sum := 0
	for i, n := range sizes {
		if n < 0 {
			return nil, fmt.Errorf("tensor: split size %d at index %d is negative", n, i)
		}
		sum += n
	}
	if sum != t.shape[0] {
		return nil, fmt.Errorf("tensor: split sizes sum to %d, dim-0 size is %d", sum, t.shape[0])
	}
	pieces := make([]*Tensor, 0, len(sizes))
	start := 0
	for _, n := range sizes {
		piece, err := t.SliceRows(start, start+n)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, piece)
		start += n
	}
	return pieces, nil
}

// Equal reports whether two tensors have identical shape and elements.
func Equal(a, b *Tensor) bool {
	if a.Dims() != b.Dims() {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// options.go
//
// Session-level configuration values.

package batching

import "fmt"

// Options configures a BatchingSession.
type Options struct {
	// AllowedBatchSizes is an ascending list of batch sizes the wrapped
	// engine is specialized for. Merged batches are padded up to the
	// smallest allowed size that fits. Empty means no rounding.
	AllowedBatchSizes []int
}

// Validate checks that AllowedBatchSizes is positive and strictly
// ascending.
func (o Options) Validate() error {
	prev := 0
	for i, size := range o.AllowedBatchSizes {
		if size <= 0 {
			return fmt.Errorf("%w: allowed batch size at index %d must be positive, got %d",
				ErrInvalidConfiguration, i, size)
		}
		if size <= prev {
			return fmt.Errorf("%w: allowed batch sizes must be strictly ascending, got %d after %d",
				ErrInvalidConfiguration, size, prev)
		}
		prev = size
	}
	return nil
}

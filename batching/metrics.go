// metrics.go
//
// Tracks session-wide counters for batching behavior: batches processed,
// padding overhead, and unbatched pass-through calls.

package batching

import (
	"fmt"
	"sync/atomic"
)

// Metrics aggregates counters across a session's lifetime. Updated from
// caller goroutines and scheduler workers concurrently, hence atomics.
type Metrics struct {
	BatchesProcessed atomic.Int64 // Number of non-empty batches processed, including failed ones
	TasksCompleted   atomic.Int64 // Number of tasks whose completion fired
	PaddingRows      atomic.Int64 // Total rows added to reach allowed batch sizes
	PassThroughCalls atomic.Int64 // Calls bypassing the batcher on a signature miss
	FailedBatches    atomic.Int64 // Batches whose tasks received a non-nil status
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	BatchesProcessed int64
	TasksCompleted   int64
	PaddingRows      int64
	PassThroughCalls int64
	FailedBatches    int64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		BatchesProcessed: m.BatchesProcessed.Load(),
		TasksCompleted:   m.TasksCompleted.Load(),
		PaddingRows:      m.PaddingRows.Load(),
		PassThroughCalls: m.PassThroughCalls.Load(),
		FailedBatches:    m.FailedBatches.Load(),
	}
}

func (s MetricsSnapshot) String() string {
	avg := 0.0
	if s.BatchesProcessed > 0 {
		avg = float64(s.TasksCompleted) / float64(s.BatchesProcessed)
	}
	return fmt.Sprintf(
		"batches=%d tasks=%d avg_tasks_per_batch=%.2f padding_rows=%d pass_through=%d failed_batches=%d",
		s.BatchesProcessed, s.TasksCompleted, avg, s.PaddingRows, s.PassThroughCalls, s.FailedBatches)
}

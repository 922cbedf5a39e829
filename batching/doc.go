// Package batching coalesces concurrent single-request inference calls
// into larger batched calls against a wrapped engine, and fans the batched
// outputs back out to the waiting callers.
//
// # Reading Guide
//
// Start with these three files to understand the pipeline:
//   - session.go: the Run façade, input-size checks, and the batch processor
//   - merge.go / split.go: concatenation with padding, and output fan-out
//   - scheduler.go: batch formation (size/time sealing) and worker dispatch
//
// # Architecture
//
// A BatchingSession holds one scheduler per declared Signature (the pair
// of input/output tensor name sets). A Run call whose signature matches is
// packaged as a Task and scheduled; the caller blocks on the task's
// completion channel. When the scheduler closes a Batch, a worker invokes
// the session's processor, which merges the tasks' inputs along dimension
// 0 (padding up to an allowed batch size), runs the wrapped engine once,
// splits the outputs back per task, and fires every completion. A call
// whose signature was not declared is forwarded to the wrapped engine
// in-line, with a warning.
//
// All tasks in one batch share a terminal status: a malformed call is
// rejected before scheduling, so every task that reaches the processor is
// a well-formed contributor to the single engine call.
//
// The tensor values flowing through the pipeline live in the tensor
// sub-package: dense row-major float32 tensors with zero-copy row slicing.
package batching

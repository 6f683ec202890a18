package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution. The worker has
// already released its accounting when the handler runs; a panicking task
// never leaks a thread slot.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - class: The class of the task that panicked
	// - workerID: The ID of the worker executing the task
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(class TaskClass, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(class TaskClass, workerID int, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Worker %d] %s task panic: %v\nStack trace:\n%s",
		workerID, class, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting task execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting task execution
// performance.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(class TaskClass, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(class TaskClass, panicInfo any)

	// RecordQueueDepth records the depth of a class queue after a task was
	// routed into it.
	RecordQueueDepth(class TaskClass, depth int)

	// RecordTaskRejected records that a submission was dropped (e.g. during
	// shutdown).
	RecordTaskRejected(reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(class TaskClass, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(class TaskClass, panicInfo any) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(class TaskClass, depth int) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(reason string) {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected submissions
// =============================================================================

// RejectedTaskHandler is called when a submission is dropped. This happens
// when the pool is shutting down or the submitted task is malformed.
//
// Implementations should be thread-safe as they may be called concurrently.
type RejectedTaskHandler interface {
	// HandleRejectedTask is called when a submission is dropped.
	//
	// Parameters:
	// - reason: Why the submission was dropped (e.g. "shutting down")
	HandleRejectedTask(reason string)
}

// DefaultRejectedTaskHandler provides a basic handler that logs dropped
// submissions.
type DefaultRejectedTaskHandler struct{}

// HandleRejectedTask logs the dropped submission.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(reason string) {
	fmt.Printf("[Pool] Task rejected: %s\n", reason)
}

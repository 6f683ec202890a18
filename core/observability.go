package core

import "time"

// ClassStats is a snapshot of one class's scheduling state.
type ClassStats struct {
	Class             TaskClass
	Queued            int
	Running           int
	PriorityThreshold int
	MaxThreads        int
}

// PoolStats represents runtime observability state for a pool.
type PoolStats struct {
	Workers      int
	FreeThreads  int
	IngressDepth int
	Rejected     int64
	Delayed      int
	ShuttingDown bool
	Classes      []ClassStats
}

// ExecutionRecord captures a completed task execution event.
type ExecutionRecord struct {
	Class      TaskClass
	WorkerID   int
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

package prioritizedpool

import "github.com/lunahsin/go-prioritized-pool/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the prioritizedpool package for most use
// cases.

// Task is the unit of work executed by the pool
type Task = core.Task

// FuncTask wraps a closure as a Task
type FuncTask = core.FuncTask

// TaskClass identifies the scheduling bucket a task belongs to
type TaskClass = core.TaskClass

// ClassConfig specifies the scheduling schema for one task class
type ClassConfig = core.ClassConfig

// PoolStats represents runtime observability state for a pool
type PoolStats = core.PoolStats

// ClassStats is a snapshot of one class's scheduling state
type ClassStats = core.ClassStats

// ExecutionRecord captures a completed task execution event
type ExecutionRecord = core.ExecutionRecord

// Logger is the structured logging interface the pool writes to
type Logger = core.Logger

// Class constants
const (
	TaskClassHigh   TaskClass = core.TaskClassHigh
	TaskClassMedium TaskClass = core.TaskClassMedium
	TaskClassLow    TaskClass = core.TaskClassLow

	TaskClassCount TaskClass = core.TaskClassCount
)

// Common errors
var (
	ErrInvalidConfig   = core.ErrInvalidConfig
	ErrShutdownTimeout = core.ErrShutdownTimeout
)

// NewFuncTask creates a task of the given class that runs action on Execute.
// This is re-exported so most callers never import core directly.
var NewFuncTask = core.NewFuncTask

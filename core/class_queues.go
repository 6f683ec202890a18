package core

import "sync"

// ClassQueues manages one FIFO queue per task class plus the thread allocation
// bookkeeping that decides which class the next free worker should serve.
//
// A single scheduling mutex guards the free-thread budget and the accounting
// for every class. It is held only for short bookkeeping sections; task
// payloads live in separate per-class FIFOs so the lock is never held across
// an enqueue, a dequeue, or task execution.
type ClassQueues struct {
	mu sync.Mutex

	sched [TaskClassCount]classAccounting

	// freeThreads is the pool's idle-worker budget. Invariant at every
	// unlock: freeThreads + sum of running over all classes == totalThreads.
	freeThreads  int
	totalThreads int

	// concurrentThreads caps simultaneously running tasks when positive.
	// Zero means the cap is the pool size.
	concurrentThreads int

	queues [TaskClassCount]taskFIFO
}

// NewClassQueues validates the class configuration and creates the scheduler
// state for a pool of totalThreads workers. concurrentThreads caps the number
// of simultaneously running tasks; zero disables the cap.
func NewClassQueues(configs []ClassConfig, totalThreads, concurrentThreads int) (*ClassQueues, error) {
	if err := ValidateClassConfigs(configs, totalThreads); err != nil {
		return nil, err
	}
	if concurrentThreads < 0 || concurrentThreads > totalThreads {
		return nil, NewConfigError("concurrent thread count %d must be in [0, %d]",
			concurrentThreads, totalThreads)
	}

	q := &ClassQueues{
		freeThreads:       totalThreads,
		totalThreads:      totalThreads,
		concurrentThreads: concurrentThreads,
	}
	for i, cfg := range configs {
		q.sched[i] = newClassAccounting(cfg)
	}

	return q, nil
}

// Post routes a task into its class queue and returns the queue depth after
// the insert. Workers are not woken; they poll.
//
// The payload is enqueued before the accounting sees it so that a committed
// acquire always finds an element in the FIFO.
func (q *ClassQueues) Post(task Task) int {
	class := task.Class()
	q.queues[class].push(task)

	q.mu.Lock()
	q.sched[class].post()
	depth := q.sched[class].queuedCount()
	q.mu.Unlock()

	return depth
}

// AcquireNext selects the next runnable class and dequeues one of its tasks.
// It returns nil when no class may run. The selection, in order:
//
//  1. No free threads: nothing runs.
//  2. First class (by index) that is preferred.
//  3. First class (by index) that is legal.
//  4. In exit mode only, first class (by index) with queued work, ignoring
//     both the threshold and the ceiling so shutdown always drains.
//
// On a hit the class accounting and free-thread budget are committed under the
// scheduling lock, then the payload is dequeued outside it. Release must be
// called exactly once for every non-nil return.
func (q *ClassQueues) AcquireNext(exitMode bool) Task {
	class, ok := q.tryAcquire(exitMode)
	if !ok {
		return nil
	}

	task, ok := q.queues[class].pop()
	if !ok {
		// The accounting moved a queued token out under the lock, so the
		// payload FIFO must hold at least one element.
		panic("prioritizedpool: class queue empty after committed acquire")
	}

	return task
}

func (q *ClassQueues) tryAcquire(exitMode bool) (TaskClass, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.freeThreads == 0 {
		return 0, false
	}
	if q.concurrentThreads > 0 && q.totalThreads-q.freeThreads >= q.concurrentThreads {
		return 0, false
	}

	for i := range q.sched {
		if q.sched[i].isPreferred() {
			return q.consumeLocked(TaskClass(i)), true
		}
	}

	for i := range q.sched {
		if q.sched[i].isLegal() {
			return q.consumeLocked(TaskClass(i)), true
		}
	}

	if exitMode {
		for i := range q.sched {
			if q.sched[i].hasTasks() {
				return q.consumeLocked(TaskClass(i)), true
			}
		}
	}

	return 0, false
}

// consumeLocked commits the acquire for class under q.mu.
func (q *ClassQueues) consumeLocked(class TaskClass) TaskClass {
	q.sched[class].acquire()
	q.freeThreads--
	return class
}

// Release returns the worker slot consumed by AcquireNext. It must be called
// exactly once per successful AcquireNext, whether or not Execute panicked.
func (q *ClassQueues) Release(class TaskClass) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.freeThreads >= q.totalThreads {
		panic("prioritizedpool: free thread count would exceed pool size")
	}

	q.sched[class].release()
	q.freeThreads++
}

// HasAnyTasks reports whether any class still has queued work. Running tasks
// do not count.
func (q *ClassQueues) HasAnyTasks() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.sched {
		if q.sched[i].hasTasks() {
			return true
		}
	}
	return false
}

// FreeThreads returns the current idle-worker budget.
func (q *ClassQueues) FreeThreads() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.freeThreads
}

// Snapshot returns a consistent copy of the per-class accounting and the
// free-thread budget, taken under the scheduling lock.
func (q *ClassQueues) Snapshot() ([]ClassStats, int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	classes := make([]ClassStats, TaskClassCount)
	for i := range q.sched {
		classes[i] = ClassStats{
			Class:             TaskClass(i),
			Queued:            q.sched[i].queuedCount(),
			Running:           q.sched[i].runningCount(),
			PriorityThreshold: q.sched[i].config.PriorityThreshold,
			MaxThreads:        q.sched[i].config.MaxThreads,
		}
	}

	return classes, q.freeThreads
}

package core

// classAccounting records the thread allocation for one task class: how many
// tasks are queued, how many workers the class currently occupies, and the two
// flags the scheduler selects on.
//
// Not goroutine safe. ClassQueues serializes every call under its scheduling
// lock.
type classAccounting struct {
	config ClassConfig

	// running is the number of workers currently executing tasks of this
	// class. It may exceed config.MaxThreads only while the pool drains in
	// exit mode.
	running int

	// queued is the number of tasks routed into the class queue and not yet
	// acquired.
	queued int

	// Derived flags, recomputed after every mutation of running or queued.
	legal     bool
	preferred bool
}

func newClassAccounting(config ClassConfig) classAccounting {
	a := classAccounting{config: config}
	a.reevaluate()
	return a
}

// reevaluate recomputes the derived flags.
//
// Preference is granted up to and including the threshold while legality stops
// before the ceiling. With threshold == max the class can be preferred on its
// last legal slot; with threshold == 0 it is preferred only while idle.
// Preference also requires legality, so a class at its ceiling is never
// preferred.
func (a *classAccounting) reevaluate() {
	a.legal = a.queued > 0 && a.running < a.config.MaxThreads
	a.preferred = a.legal && a.running <= a.config.PriorityThreshold
}

// post records one task routed into the class queue.
func (a *classAccounting) post() {
	a.queued++
	a.reevaluate()
}

// acquire moves one queued token to running. The caller must have checked a
// selection flag (or hasTasks in exit mode) under the same lock.
func (a *classAccounting) acquire() {
	if a.queued <= 0 {
		panic("prioritizedpool: acquire on class with no queued tasks")
	}

	a.running++
	a.queued--
	a.reevaluate()
}

// release returns one running slot after a task finished, whether or not it
// panicked.
func (a *classAccounting) release() {
	if a.running <= 0 {
		panic("prioritizedpool: release on class with no running tasks")
	}

	a.running--
	a.reevaluate()
}

func (a *classAccounting) hasTasks() bool {
	return a.queued > 0
}

func (a *classAccounting) isLegal() bool {
	return a.legal
}

func (a *classAccounting) isPreferred() bool {
	return a.preferred
}

func (a *classAccounting) runningCount() int {
	return a.running
}

func (a *classAccounting) queuedCount() int {
	return a.queued
}

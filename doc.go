// Package prioritizedpool provides a priority-aware worker pool for Go.
//
// Tasks carry a discrete class (High, Medium, Low) and each class is governed
// by two knobs: a priority-granting threshold and a hard thread ceiling. The
// scheduler picks the next task in two tiers, preferred classes first, then
// merely-legal classes, breaking ties by lowest class index.
//
// # Quick Start
//
// Create a pool with one config per class:
//
//	configs := []prioritizedpool.ClassConfig{
//		{Class: prioritizedpool.TaskClassHigh, PriorityThreshold: 10, MaxThreads: 16},
//		{Class: prioritizedpool.TaskClassMedium, PriorityThreshold: 4, MaxThreads: 12},
//		{Class: prioritizedpool.TaskClassLow, PriorityThreshold: 1, MaxThreads: 1},
//	}
//	pool, err := prioritizedpool.New(configs, placement.Greedy{}, 16, 16)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Shutdown()
//
//	pool.Submit(prioritizedpool.NewFuncTask(prioritizedpool.TaskClassHigh, func() {
//		// Your code here
//	}))
//
// # Key Concepts
//
// Preferred class: a class with queued work whose running count is at or below
// its threshold and below its ceiling. Preferred classes are scheduled ahead of everything else.
//
// Legal class: a class with queued work whose running count is below its
// ceiling. The ceiling prevents one class from starving the others and is
// relaxed only while the pool drains during shutdown.
//
// Ingress: submissions land in a shared FIFO before workers route them into
// their class queue. Routed work is always scheduled ahead of fresh arrivals,
// so older tasks keep their head start.
//
// # Shutdown
//
// Shutdown pushes one sentinel per worker through ingress. A worker that picks
// up a sentinel keeps helping with the drain, ignoring the per-class ceilings,
// and exits once the class queues are empty. Every task submitted before
// shutdown executes; submissions after shutdown are dropped.
//
// # Placement
//
// The placement package controls which CPU group each worker lands on (greedy
// fill or round-robin across groups, applied via sched_setaffinity on Linux).
// Placement never affects scheduling decisions.
package prioritizedpool

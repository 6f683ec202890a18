package core

import (
	"sync"
	"time"
)

// ingressSignalSlack sizes the wake-hint channel relative to the worker count.
const ingressSignalSlack = 2

// Ingress is the shared FIFO of submitted tasks that have not yet been routed
// into their class queue. It decouples submitters from the scheduling lock and
// keeps routed work strictly ahead of fresh arrivals: workers drain the class
// queues before they poll here.
//
// A nil entry is the shutdown sentinel.
type Ingress struct {
	mu    sync.Mutex
	items []Task
	head  int

	// signal is a wake hint for pollers. A dropped signal is harmless; Poll
	// is bounded by its timeout and the caller loops.
	signal chan struct{}
}

// NewIngress creates an ingress queue sized for the given worker count.
func NewIngress(workers int) *Ingress {
	if workers < 1 {
		workers = 1
	}
	return &Ingress{
		signal: make(chan struct{}, workers*ingressSignalSlack),
	}
}

// Push appends an entry. Pushing nil enqueues a shutdown sentinel.
func (in *Ingress) Push(task Task) {
	in.mu.Lock()
	in.items = append(in.items, task)
	in.mu.Unlock()

	select {
	case in.signal <- struct{}{}:
	default:
	}
}

// Poll removes the oldest entry, waiting at most timeout for one to arrive.
// It returns ok == false on timeout so the caller can re-check the class
// queues; the returned task is nil for a sentinel entry.
func (in *Ingress) Poll(timeout time.Duration) (task Task, ok bool) {
	if task, ok := in.tryPop(); ok {
		return task, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-in.signal:
			if task, ok := in.tryPop(); ok {
				return task, true
			}
		case <-timer.C:
			return nil, false
		}
	}
}

func (in *Ingress) tryPop() (Task, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.head == len(in.items) {
		return nil, false
	}

	task := in.items[in.head]
	in.items[in.head] = nil
	in.head++
	in.items, in.head = reclaimFront(in.items, in.head)

	return task, true
}

// Len returns the number of entries, sentinels included.
func (in *Ingress) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.items) - in.head
}

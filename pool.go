package prioritizedpool

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lunahsin/go-prioritized-pool/core"
	"github.com/lunahsin/go-prioritized-pool/placement"
)

const (
	// DefaultShutdownTimeout bounds the worker join during Shutdown.
	DefaultShutdownTimeout = 20 * time.Second

	// DefaultPollInterval bounds each ingress poll so a worker re-checks the
	// class queues even when no wake signal arrives.
	DefaultPollInterval = 100 * time.Millisecond

	// maxWorkersWithoutPlacement caps the pool size when no placement
	// strategy pins the workers.
	maxWorkersWithoutPlacement = 64
)

// Options holds optional pool configuration. All handlers default to the
// implementations in core.
type Options struct {
	// Logger receives pool lifecycle and failure logs. Defaults to
	// core.NewStdLogger().
	Logger core.Logger

	// PanicHandler is called when a task panics. Defaults to
	// core.DefaultPanicHandler.
	PanicHandler core.PanicHandler

	// Metrics records task execution metrics. Defaults to core.NilMetrics.
	Metrics core.Metrics

	// RejectedTaskHandler is called when a submission is dropped. Defaults to
	// core.DefaultRejectedTaskHandler.
	RejectedTaskHandler core.RejectedTaskHandler

	// ShutdownTimeout bounds the worker join during Shutdown. Defaults to
	// DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// PollInterval bounds each worker's ingress poll. Defaults to
	// DefaultPollInterval.
	PollInterval time.Duration

	// HistoryCapacity sizes the recent-execution ring. Zero keeps the
	// default capacity.
	HistoryCapacity int
}

// DefaultOptions returns an Options with default handlers and timeouts.
func DefaultOptions() *Options {
	return &Options{
		Logger:              core.NewStdLogger(),
		PanicHandler:        &core.DefaultPanicHandler{},
		Metrics:             &core.NilMetrics{},
		RejectedTaskHandler: &core.DefaultRejectedTaskHandler{},
		ShutdownTimeout:     DefaultShutdownTimeout,
		PollInterval:        DefaultPollInterval,
	}
}

// Pool dispatches externally submitted tasks to a fixed set of workers under
// per-class priority thresholds and thread ceilings. See the package
// documentation for the scheduling rules.
type Pool struct {
	queues  *core.ClassQueues
	ingress *core.Ingress
	delayed *core.DelayManager
	history *core.ExecutionHistory
	workers int
	wg      sync.WaitGroup

	logger       core.Logger
	panicHandler core.PanicHandler
	metrics      core.Metrics
	rejected     core.RejectedTaskHandler

	shutdownTimeout time.Duration
	pollInterval    time.Duration

	shuttingDown  atomic.Bool
	rejectedCount atomic.Int64
	attached      atomic.Int32

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a pool of totalThreads workers placed by strategy.
//
// concurrentThreads caps the number of tasks running simultaneously; zero
// disables the cap. A nil strategy means no explicit placement and limits
// totalThreads to 64.
//
// Validation failures are reported synchronously and match
// core.ErrInvalidConfig under errors.Is.
func New(configs []core.ClassConfig, strategy placement.Strategy, totalThreads, concurrentThreads int) (*Pool, error) {
	return NewWithOptions(configs, strategy, totalThreads, concurrentThreads, DefaultOptions())
}

// NewWithOptions is New with explicit Options. A nil opts uses the defaults;
// nil fields inside opts are filled with their defaults.
func NewWithOptions(configs []core.ClassConfig, strategy placement.Strategy, totalThreads, concurrentThreads int, opts *Options) (*Pool, error) {
	queues, err := core.NewClassQueues(configs, totalThreads, concurrentThreads)
	if err != nil {
		return nil, err
	}

	noPlacement := strategy == nil
	if !noPlacement {
		_, noPlacement = strategy.(placement.None)
	}
	if noPlacement && totalThreads > maxWorkersWithoutPlacement {
		return nil, core.NewConfigError("total thread count %d exceeds the limit of %d without a placement strategy",
			totalThreads, maxWorkersWithoutPlacement)
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	p := &Pool{
		queues:          queues,
		ingress:         core.NewIngress(totalThreads),
		history:         core.NewExecutionHistory(opts.HistoryCapacity),
		workers:         totalThreads,
		logger:          opts.Logger,
		panicHandler:    opts.PanicHandler,
		metrics:         opts.Metrics,
		rejected:        opts.RejectedTaskHandler,
		shutdownTimeout: opts.ShutdownTimeout,
		pollInterval:    opts.PollInterval,
	}
	if p.logger == nil {
		p.logger = core.NewStdLogger()
	}
	if p.panicHandler == nil {
		p.panicHandler = &core.DefaultPanicHandler{}
	}
	if p.metrics == nil {
		p.metrics = &core.NilMetrics{}
	}
	if p.rejected == nil {
		p.rejected = &core.DefaultRejectedTaskHandler{}
	}
	if p.shutdownTimeout <= 0 {
		p.shutdownTimeout = DefaultShutdownTimeout
	}
	if p.pollInterval <= 0 {
		p.pollInterval = DefaultPollInterval
	}

	p.delayed = core.NewDelayManager(p.Submit)

	if strategy == nil {
		strategy = placement.None{}
	}
	p.spawnWorkers(strategy, totalThreads)

	return p, nil
}

func (p *Pool) spawnWorkers(strategy placement.Strategy, n int) {
	groups := placement.CPUGroups()

	workerID := 0
	strategy.CreateThreads(n, groups, func(group int, affinityMask uint64) {
		id := workerID
		workerID++

		p.wg.Add(1)
		go p.workerLoop(id, group, affinityMask)
	})
}

// Submit hands a task to the pool. Non-blocking; the pool owns the task from
// here on. Submissions made after shutdown begins are dropped and routed to
// the RejectedTaskHandler.
func (p *Pool) Submit(task core.Task) {
	if task == nil {
		p.reject("nil task")
		return
	}
	if !task.Class().Valid() {
		p.reject(fmt.Sprintf("unknown task class %d", task.Class()))
		return
	}
	if p.shuttingDown.Load() {
		p.reject("shutting down")
		return
	}

	p.ingress.Push(task)
}

// SubmitDelayed schedules task to be submitted after delay. Delayed tasks
// still pending when Shutdown runs are dropped.
func (p *Pool) SubmitDelayed(task core.Task, delay time.Duration) {
	if task == nil {
		p.reject("nil task")
		return
	}
	if p.shuttingDown.Load() {
		p.reject("shutting down")
		return
	}

	p.delayed.Add(task, delay)
}

func (p *Pool) reject(reason string) {
	p.rejectedCount.Add(1)
	p.rejected.HandleRejectedTask(reason)
	p.metrics.RecordTaskRejected(reason)
}

// Attach registers an external source that feeds tasks into the pool. The
// source is opaque to the pool; only the registration count matters. Every
// attached source must be detached before Shutdown.
func (p *Pool) Attach(source any) {
	p.attached.Add(1)
}

// Detach unregisters a source previously passed to Attach.
func (p *Pool) Detach(source any) {
	if n := p.attached.Add(-1); n < 0 {
		panic("prioritizedpool: detach without matching attach")
	}
}

// Shutdown stops accepting work, lets the workers drain every queued task,
// and joins them. Idempotent; every call returns the first call's result.
//
// Returns core.ErrShutdownTimeout when the workers do not exit in time.
// Panics if any attached source was not detached.
func (p *Pool) Shutdown() error {
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.shutdown()
	})
	return p.shutdownErr
}

func (p *Pool) shutdown() error {
	p.shuttingDown.Store(true)

	p.delayed.Stop()

	if n := p.attached.Load(); n != 0 {
		panic(fmt.Sprintf("prioritizedpool: %d attached sources at shutdown", n))
	}

	// One sentinel per worker so every worker observes shutdown even when no
	// real tasks remain.
	for i := 0; i < p.workers; i++ {
		p.ingress.Push(nil)
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Log(core.LevelInfo, "pool stopped", "workers", p.workers)
		return nil
	case <-time.After(p.shutdownTimeout):
		p.logger.Log(core.LevelError, "pool shutdown timed out",
			"workers", p.workers, "timeout", p.shutdownTimeout)
		return core.ErrShutdownTimeout
	}
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// Stats returns a snapshot of the pool's scheduling state.
func (p *Pool) Stats() core.PoolStats {
	classes, free := p.queues.Snapshot()
	return core.PoolStats{
		Workers:      p.workers,
		FreeThreads:  free,
		IngressDepth: p.ingress.Len(),
		Rejected:     p.rejectedCount.Load(),
		Delayed:      p.delayed.TaskCount(),
		ShuttingDown: p.shuttingDown.Load(),
		Classes:      classes,
	}
}

// RecentExecutions returns up to limit execution records, newest first.
func (p *Pool) RecentExecutions(limit int) []core.ExecutionRecord {
	return p.history.Recent(limit)
}

// workerLoop is the main loop for each worker. A worker always drains the
// class queues before it consults ingress, so routed work is scheduled
// strictly ahead of fresh arrivals.
func (p *Pool) workerLoop(id, group int, affinityMask uint64) {
	defer p.wg.Done()

	if affinityMask != 0 {
		runtime.LockOSThread()
		if err := placement.PinCurrentThread(group, affinityMask); err != nil {
			p.logger.Log(core.LevelWarn, "worker affinity not applied",
				"worker", id, "group", group, "error", err)
		}
	}

	// Set once this worker pulls a sentinel; relaxes the per-class ceilings
	// so the drain cannot wedge.
	exitMode := false

	for {
		// Step A: prefer routed work.
		if task := p.queues.AcquireNext(exitMode); task != nil {
			p.runTask(id, task)
			continue
		}

		// Step B: poll ingress with a bounded timeout.
		task, ok := p.ingress.Poll(p.pollInterval)
		if !ok {
			continue
		}

		if task == nil {
			// Shutdown sentinel.
			exitMode = true
			if p.queues.HasAnyTasks() {
				// Re-post so another worker can also terminate after the
				// drain.
				p.ingress.Push(nil)
				continue
			}
			return
		}

		depth := p.queues.Post(task)
		p.metrics.RecordQueueDepth(task.Class(), depth)
	}
}

// runTask executes one acquired task. The accounting is released exactly once
// whether Execute returns or panics; a task failure never leaks a thread
// slot.
func (p *Pool) runTask(workerID int, task core.Task) {
	class := task.Class()
	startedAt := time.Now()

	defer func() {
		p.queues.Release(class)

		finishedAt := time.Now()
		record := core.ExecutionRecord{
			Class:      class,
			WorkerID:   workerID,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Duration:   finishedAt.Sub(startedAt),
		}

		if r := recover(); r != nil {
			record.Panicked = true
			stack := debug.Stack()
			p.logger.Log(core.LevelError, "task panicked",
				"worker", workerID, "class", class, "panic", r)
			p.panicHandler.HandlePanic(class, workerID, r, stack)
			p.metrics.RecordTaskPanic(class, r)
		} else {
			p.metrics.RecordTaskDuration(class, record.Duration)
		}

		p.history.Add(record)
	}()

	task.Execute()
}

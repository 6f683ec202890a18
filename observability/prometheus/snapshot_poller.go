package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/lunahsin/go-prioritized-pool/core"
)

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports pool Stats() snapshots into Prometheus
// gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolFreeThreads  *prom.GaugeVec
	poolIngressDepth *prom.GaugeVec
	poolRejected     *prom.GaugeVec
	poolDelayed      *prom.GaugeVec
	poolWorkers      *prom.GaugeVec
	poolShuttingDown *prom.GaugeVec

	classQueued  *prom.GaugeVec
	classRunning *prom.GaugeVec

	stateMu sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolFreeThreads := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "pool_free_threads",
		Help:      "Idle workers per pool.",
	}, []string{"pool"})
	poolIngressDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "pool_ingress_depth",
		Help:      "Submitted tasks not yet routed into a class queue.",
	}, []string{"pool"})
	poolRejected := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "pool_rejected_total",
		Help:      "Dropped submission count snapshot.",
	}, []string{"pool"})
	poolDelayed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "pool_delayed",
		Help:      "Pending delayed tasks per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	poolShuttingDown := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "pool_shutting_down",
		Help:      "Pool shutdown state (1=shutting down, 0=accepting work).",
	}, []string{"pool"})

	classQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "class_queued",
		Help:      "Queued tasks per class.",
	}, []string{"pool", "class"})
	classRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "prioritizedpool",
		Name:      "class_running",
		Help:      "Running tasks per class.",
	}, []string{"pool", "class"})

	var err error
	if poolFreeThreads, err = registerCollector(reg, poolFreeThreads); err != nil {
		return nil, err
	}
	if poolIngressDepth, err = registerCollector(reg, poolIngressDepth); err != nil {
		return nil, err
	}
	if poolRejected, err = registerCollector(reg, poolRejected); err != nil {
		return nil, err
	}
	if poolDelayed, err = registerCollector(reg, poolDelayed); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolShuttingDown, err = registerCollector(reg, poolShuttingDown); err != nil {
		return nil, err
	}
	if classQueued, err = registerCollector(reg, classQueued); err != nil {
		return nil, err
	}
	if classRunning, err = registerCollector(reg, classRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:         interval,
		pools:            make(map[string]PoolSnapshotProvider),
		poolFreeThreads:  poolFreeThreads,
		poolIngressDepth: poolIngressDepth,
		poolRejected:     poolRejected,
		poolDelayed:      poolDelayed,
		poolWorkers:      poolWorkers,
		poolShuttingDown: poolShuttingDown,
		classQueued:      classQueued,
		classRunning:     classRunning,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start launches the polling loop and reports whether it did; a poller that
// is already running returns false. The loop ends when ctx is done or Stop is
// called; call Stop before restarting either way.
func (p *SnapshotPoller) Start(ctx context.Context) bool {
	if p == nil {
		return false
	}

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.stop != nil {
		return false
	}

	p.stop = make(chan struct{})
	p.stopped = make(chan struct{})
	go p.run(ctx, p.stop, p.stopped)

	return true
}

// Stop halts polling and waits for the loop to exit. Safe to call repeatedly
// or without a prior Start.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	stop, stopped := p.stop, p.stopped
	p.stop, p.stopped = nil, nil
	p.stateMu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-stopped
}

// run collects once per tick, starting immediately so a short-lived poller
// still exports at least one snapshot.
func (p *SnapshotPoller) run(ctx context.Context, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		p.collectOnce()

		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-tick.C:
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolFreeThreads.WithLabelValues(name).Set(float64(stats.FreeThreads))
		p.poolIngressDepth.WithLabelValues(name).Set(float64(stats.IngressDepth))
		p.poolRejected.WithLabelValues(name).Set(float64(stats.Rejected))
		p.poolDelayed.WithLabelValues(name).Set(float64(stats.Delayed))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.ShuttingDown {
			p.poolShuttingDown.WithLabelValues(name).Set(1)
		} else {
			p.poolShuttingDown.WithLabelValues(name).Set(0)
		}

		for _, cls := range stats.Classes {
			label := cls.Class.String()
			p.classQueued.WithLabelValues(name, label).Set(float64(cls.Queued))
			p.classRunning.WithLabelValues(name, label).Set(float64(cls.Running))
		}
	}
}

package prometheus

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lunahsin/go-prioritized-pool/core"
)

type fakePoolProvider struct {
	stats core.PoolStats
}

func (f *fakePoolProvider) Stats() core.PoolStats {
	return f.stats
}

// TestSnapshotPoller_ExportsPoolGauges verifies the gauge export
// Given: A poller with one registered pool provider
// When: polling runs at least once
// Then: the pool and per-class gauges reflect the snapshot
func TestSnapshotPoller_ExportsPoolGauges(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller() error = %v", err)
	}

	provider := &fakePoolProvider{
		stats: core.PoolStats{
			Workers:      8,
			FreeThreads:  5,
			IngressDepth: 3,
			Rejected:     2,
			Delayed:      1,
			ShuttingDown: false,
			Classes: []core.ClassStats{
				{Class: core.TaskClassHigh, Queued: 4, Running: 2},
				{Class: core.TaskClassMedium, Queued: 0, Running: 1},
				{Class: core.TaskClassLow, Queued: 7, Running: 0},
			},
		},
	}
	poller.AddPool("main", provider)

	poller.Start(context.Background())
	defer poller.Stop()

	// The poller collects once at startup; give it a moment.
	time.Sleep(50 * time.Millisecond)

	if got := testutil.ToFloat64(poller.poolWorkers.WithLabelValues("main")); got != 8 {
		t.Errorf("pool_workers = %v, want 8", got)
	}
	if got := testutil.ToFloat64(poller.poolFreeThreads.WithLabelValues("main")); got != 5 {
		t.Errorf("pool_free_threads = %v, want 5", got)
	}
	if got := testutil.ToFloat64(poller.poolIngressDepth.WithLabelValues("main")); got != 3 {
		t.Errorf("pool_ingress_depth = %v, want 3", got)
	}
	if got := testutil.ToFloat64(poller.poolShuttingDown.WithLabelValues("main")); got != 0 {
		t.Errorf("pool_shutting_down = %v, want 0", got)
	}
	if got := testutil.ToFloat64(poller.classQueued.WithLabelValues("main", "low")); got != 7 {
		t.Errorf("class_queued{class=low} = %v, want 7", got)
	}
	if got := testutil.ToFloat64(poller.classRunning.WithLabelValues("main", "high")); got != 2 {
		t.Errorf("class_running{class=high} = %v, want 2", got)
	}
}

// TestSnapshotPoller_StartStopIdempotent verifies lifecycle safety
// Given: A poller
// When: Start and Stop are called repeatedly
// Then: only the first Start of each cycle launches and no call deadlocks
func TestSnapshotPoller_StartStopIdempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller() error = %v", err)
	}

	if !poller.Start(context.Background()) {
		t.Error("first Start() = false, want true")
	}
	if poller.Start(context.Background()) {
		t.Error("second Start() while running = true, want false")
	}
	poller.Stop()
	poller.Stop()

	if !poller.Start(context.Background()) {
		t.Error("Start() after Stop = false, want true")
	}
	poller.Stop()
}

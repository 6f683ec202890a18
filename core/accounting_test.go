package core

import "testing"

func testConfig(threshold, maxThreads int) ClassConfig {
	return ClassConfig{Class: TaskClassHigh, PriorityThreshold: threshold, MaxThreads: maxThreads}
}

// TestClassAccounting_FlagDerivation verifies the derived flag table
// Given: A class with threshold=2, max=4
// When: queued and running move through their ranges
// Then: preferred uses <= threshold, legal uses < max, both need queued work
func TestClassAccounting_FlagDerivation(t *testing.T) {
	cases := []struct {
		name          string
		threshold     int
		maxThreads    int
		queued        int
		running       int
		wantPreferred bool
		wantLegal     bool
	}{
		{"empty queue is neither", 2, 4, 0, 0, false, false},
		{"idle with work is preferred", 2, 4, 1, 0, true, true},
		{"at threshold still preferred", 2, 4, 1, 2, true, true},
		{"above threshold merely legal", 2, 4, 1, 3, false, true},
		{"at ceiling not legal", 2, 4, 1, 4, false, false},
		{"threshold equals max: preferred on last slot", 4, 4, 1, 3, true, true},
		{"threshold equals max: dead at ceiling", 4, 4, 1, 4, false, false},
		{"zero threshold: preferred only when idle", 0, 4, 1, 0, true, true},
		{"zero threshold: one running kills preference", 0, 4, 1, 1, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newClassAccounting(testConfig(tc.threshold, tc.maxThreads))
			a.queued = tc.queued
			a.running = tc.running
			a.reevaluate()

			if a.isPreferred() != tc.wantPreferred {
				t.Errorf("preferred = %v, want %v", a.isPreferred(), tc.wantPreferred)
			}
			if a.isLegal() != tc.wantLegal {
				t.Errorf("legal = %v, want %v", a.isLegal(), tc.wantLegal)
			}
			if a.isPreferred() && !a.isLegal() && tc.running < tc.maxThreads {
				t.Error("preferred without legal below the ceiling")
			}
		})
	}
}

// TestClassAccounting_PostAcquireRelease verifies the counter transitions
// Given: A fresh class accounting
// When: post, acquire and release run in sequence
// Then: queued and running track every transition and flags follow
func TestClassAccounting_PostAcquireRelease(t *testing.T) {
	a := newClassAccounting(testConfig(1, 2))

	a.post()
	a.post()
	if a.queuedCount() != 2 {
		t.Fatalf("queued = %d, want 2", a.queuedCount())
	}
	if !a.isPreferred() {
		t.Fatal("idle class with work should be preferred")
	}

	a.acquire()
	if a.queuedCount() != 1 || a.runningCount() != 1 {
		t.Fatalf("after acquire: queued = %d running = %d, want 1 and 1",
			a.queuedCount(), a.runningCount())
	}
	if !a.isPreferred() {
		t.Error("running == threshold should keep preference")
	}

	a.acquire()
	if a.isLegal() {
		t.Error("running == max should not be legal")
	}
	if a.isPreferred() {
		t.Error("running above threshold should not be preferred")
	}

	a.release()
	if a.runningCount() != 1 || a.queuedCount() != 0 {
		t.Fatalf("after release: running = %d queued = %d, want 1 and 0",
			a.runningCount(), a.queuedCount())
	}
	if a.hasTasks() || a.isLegal() || a.isPreferred() {
		t.Error("drained class should have no flags set")
	}
}

// TestClassAccounting_AcquireUnderflowPanics verifies the scheduler assertion
// Given: A class accounting with no queued work
// When: acquire is called
// Then: it panics (scheduler invariant violation)
func TestClassAccounting_AcquireUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("acquire with empty queue did not panic")
		}
	}()

	a := newClassAccounting(testConfig(1, 2))
	a.acquire()
}

// TestClassAccounting_ReleaseUnderflowPanics verifies the scheduler assertion
// Given: A class accounting with nothing running
// When: release is called
// Then: it panics (scheduler invariant violation)
func TestClassAccounting_ReleaseUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("release with no running tasks did not panic")
		}
	}()

	a := newClassAccounting(testConfig(1, 2))
	a.release()
}

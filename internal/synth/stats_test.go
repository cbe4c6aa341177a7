package synth

import (
	"testing"
	"time"
)

func TestLLMStats_SnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{500, 100, 300, 200, 400} {
		stats.Record(ms, false)
	}

	snap := stats.Snapshot()
	if snap.Calls != 5 {
		t.Fatalf("expected calls=5, got %d", snap.Calls)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestLLMStats_CountsFailures(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(10, false)
	stats.Record(20, true)
	stats.Record(30, true)

	snap := stats.Snapshot()
	if snap.Calls != 3 || snap.Failures != 2 {
		t.Fatalf("expected calls=3 failures=2, got calls=%d failures=%d", snap.Calls, snap.Failures)
	}
}

func TestLLMStats_ExpiresOldSamples(t *testing.T) {
	now := time.Now()
	stats := NewLLMStats(time.Minute)
	stats.now = func() time.Time { return now }
	stats.Record(100, false)

	now = now.Add(2 * time.Minute)
	if snap := stats.Snapshot(); snap.Calls != 0 {
		t.Fatalf("expected calls=0 after expiry, got %d", snap.Calls)
	}

	stats.Record(200, false)
	snap := stats.Snapshot()
	if snap.Calls != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected a single 200ms sample, got %+v", snap)
	}
}

func TestLLMStats_ClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(-10, false)
	snap := stats.Snapshot()
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestLLMStats_EmptySnapshot(t *testing.T) {
	snap := NewLLMStats(0).Snapshot()
	if snap != (StatsSnapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

package authkit

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorCountsConcurrently(t *testing.T) {
	m := newMetricsCollector(false)

	var wg sync.WaitGroup
	const workers = 8
	const perWorker = 1000

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.inc(MetricVerifyCacheHit)
			}
		}()
	}
	wg.Wait()

	snap := m.snapshot()
	if got := snap.Counters[MetricVerifyCacheHit]; got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
	if snap.VerifyLatency != nil {
		t.Fatal("histogram must be absent when disabled")
	}
}

func TestNilCollectorIgnoresWrites(t *testing.T) {
	var m *metricsCollector
	m.inc(MetricGenerateSuccess)
	m.observeVerify(time.Millisecond)

	snap := m.snapshot()
	if snap.Counters[MetricGenerateSuccess] != 0 {
		t.Fatal("nil collector must read as zero")
	}
}

func TestHistogramBucketBoundaries(t *testing.T) {
	m := newMetricsCollector(true)

	m.observeVerify(3 * time.Millisecond)   // <= 5ms
	m.observeVerify(5 * time.Millisecond)   // boundary, inclusive
	m.observeVerify(7 * time.Millisecond)   // <= 10ms
	m.observeVerify(600 * time.Millisecond) // overflow

	h := m.snapshot().VerifyLatency
	if h == nil {
		t.Fatal("expected histogram in snapshot")
	}
	if h.Count != 4 {
		t.Fatalf("expected 4 samples, got %d", h.Count)
	}
	if h.Buckets[0] != 2 {
		t.Fatalf("expected 2 samples in first bucket, got %d", h.Buckets[0])
	}
	if h.Buckets[1] != 1 {
		t.Fatalf("expected 1 sample in second bucket, got %d", h.Buckets[1])
	}
	if h.Buckets[len(h.Buckets)-1] != 1 {
		t.Fatalf("expected 1 overflow sample, got %d", h.Buckets[len(h.Buckets)-1])
	}
	wantSum := uint64((3 + 5 + 7 + 600) * 1000)
	if h.SumUs != wantSum {
		t.Fatalf("expected sum %dus, got %d", wantSum, h.SumUs)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	m := newMetricsCollector(true)
	m.inc(MetricRefreshSuccess)
	m.observeVerify(time.Millisecond)

	snap := m.snapshot()
	m.inc(MetricRefreshSuccess)
	m.observeVerify(time.Second)

	if snap.Counters[MetricRefreshSuccess] != 1 {
		t.Fatal("snapshot counters must not track later increments")
	}
	if snap.VerifyLatency.Count != 1 {
		t.Fatal("snapshot histogram must not track later observations")
	}
}

func TestMetricIDNames(t *testing.T) {
	seen := make(map[string]bool)
	for id := MetricID(0); id < metricIDCount; id++ {
		name := id.String()
		if name == "" || name == "unknown" {
			t.Fatalf("metric %d has no name", id)
		}
		if seen[name] {
			t.Fatalf("duplicate metric name %q", name)
		}
		seen[name] = true
	}
	if MetricID(-1).String() != "unknown" || metricIDCount.String() != "unknown" {
		t.Fatal("out-of-range ids must stringify as unknown")
	}
}

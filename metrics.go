package authkit

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one counter or histogram collected by the
// service.
type MetricID int

const (
	MetricGenerateSuccess MetricID = iota
	MetricGenerateFailure
	MetricVerifyCacheHit
	MetricVerifyCacheMiss
	MetricVerifyFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshReuseDetected
	MetricRevokeSuccess
	MetricRevokeFailure
	MetricSweepRevoked
	MetricSweepDeleted
	MetricVerifyLatency

	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricGenerateSuccess:      "generate_success",
	MetricGenerateFailure:      "generate_failure",
	MetricVerifyCacheHit:       "verify_cache_hit",
	MetricVerifyCacheMiss:      "verify_cache_miss",
	MetricVerifyFailure:        "verify_failure",
	MetricRefreshSuccess:       "refresh_success",
	MetricRefreshFailure:       "refresh_failure",
	MetricRefreshReuseDetected: "refresh_reuse_detected",
	MetricRevokeSuccess:        "revoke_success",
	MetricRevokeFailure:        "revoke_failure",
	MetricSweepRevoked:         "sweep_revoked",
	MetricSweepDeleted:         "sweep_deleted",
	MetricVerifyLatency:        "verify_latency",
}

// String returns a stable snake_case name for the metric.
func (id MetricID) String() string {
	if id < 0 || id >= metricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

// paddedCounter occupies a full cache line so adjacent counters do not
// false-share under concurrent increments.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// latencyBuckets are the upper bounds, in milliseconds, of the verify
// latency histogram. The last bucket is unbounded.
var latencyBuckets = [...]float64{5, 10, 25, 50, 100, 250, 500}

const latencyBucketCount = len(latencyBuckets) + 1

type latencyHistogram struct {
	buckets [latencyBucketCount]atomic.Uint64
	sumUs   atomic.Uint64
	count   atomic.Uint64
}

func (h *latencyHistogram) observe(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	idx := latencyBucketCount - 1
	for i, bound := range latencyBuckets {
		if ms <= bound {
			idx = i
			break
		}
	}
	h.buckets[idx].Add(1)
	h.sumUs.Add(uint64(d / time.Microsecond))
	h.count.Add(1)
}

// metricsCollector holds all in-process counters and histograms. A nil
// collector is valid and ignores writes.
type metricsCollector struct {
	counters   [metricIDCount]paddedCounter
	histograms bool
	verify     latencyHistogram
}

func newMetricsCollector(histograms bool) *metricsCollector {
	return &metricsCollector{histograms: histograms}
}

func (m *metricsCollector) inc(id MetricID) {
	if m == nil || id < 0 || id >= metricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

func (m *metricsCollector) observeVerify(d time.Duration) {
	if m == nil || !m.histograms {
		return
	}
	m.verify.observe(d)
}

// HistogramSnapshot is a point-in-time copy of one latency histogram.
type HistogramSnapshot struct {
	// BucketBoundsMs are upper bounds in milliseconds; the final
	// bucket in Buckets is unbounded.
	BucketBoundsMs []float64
	Buckets        []uint64
	SumUs          uint64
	Count          uint64
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Counters      map[MetricID]uint64
	VerifyLatency *HistogramSnapshot
}

func (m *metricsCollector) snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].value.Load()
	}
	if m.histograms {
		h := &HistogramSnapshot{
			BucketBoundsMs: append([]float64(nil), latencyBuckets[:]...),
			Buckets:        make([]uint64, latencyBucketCount),
			SumUs:          m.verify.sumUs.Load(),
			Count:          m.verify.count.Load(),
		}
		for i := range h.Buckets {
			h.Buckets[i] = m.verify.buckets[i].Load()
		}
		snap.VerifyLatency = h
	}
	return snap
}

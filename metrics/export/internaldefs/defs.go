package internaldefs

import (
	"github.com/pavelzhurov/authkit"
)

// CounterDef binds a service counter to its exported name.
type CounterDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// HistogramDef binds a service histogram to its exported name.
type HistogramDef struct {
	ID   authkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: authkit.MetricGenerateSuccess, Name: "authkit_generate_success_total", Help: "Successfully issued token pairs."},
	{ID: authkit.MetricGenerateFailure, Name: "authkit_generate_failure_total", Help: "Failed token pair issuances."},
	{ID: authkit.MetricVerifyCacheHit, Name: "authkit_verify_cache_hit_total", Help: "Access token verifications served from the cache."},
	{ID: authkit.MetricVerifyCacheMiss, Name: "authkit_verify_cache_miss_total", Help: "Access token verifications that missed the cache."},
	{ID: authkit.MetricVerifyFailure, Name: "authkit_verify_failure_total", Help: "Failed access token verifications."},
	{ID: authkit.MetricRefreshSuccess, Name: "authkit_refresh_success_total", Help: "Successful refresh token rotations."},
	{ID: authkit.MetricRefreshFailure, Name: "authkit_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: authkit.MetricRefreshReuseDetected, Name: "authkit_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: authkit.MetricRevokeSuccess, Name: "authkit_revoke_success_total", Help: "Successful refresh token revocations."},
	{ID: authkit.MetricRevokeFailure, Name: "authkit_revoke_failure_total", Help: "Failed revocation attempts."},
	{ID: authkit.MetricSweepRevoked, Name: "authkit_sweep_revoked_total", Help: "Refresh tokens soft-revoked by the expiry sweep."},
	{ID: authkit.MetricSweepDeleted, Name: "authkit_sweep_deleted_total", Help: "Refresh tokens hard-deleted by the retention sweep."},
}

// HistogramDefs lists every exported histogram in render order.
var HistogramDefs = []HistogramDef{
	{ID: authkit.MetricVerifyLatency, Name: "authkit_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds as rendered
// in the le label.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are instrument-name-safe forms of the bounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies a snapshot's bucket slice into the fixed
// layout the exporters render, tolerating short or missing input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms require.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

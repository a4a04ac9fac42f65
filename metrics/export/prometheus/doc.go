// Package prometheus renders authkit metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [authkit.Service] and exposes an
// http.Handler serving every counter and histogram. Counter names are
// prefixed authkit_*_total; the single histogram is
// authkit_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount
//     the Handler.
//   - Mutate service state.
package prometheus

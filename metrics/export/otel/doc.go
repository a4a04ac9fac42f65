// Package otel bridges authkit metrics into OpenTelemetry.
//
// [NewOTelExporter] registers an Int64ObservableCounter per authkit
// counter and an Int64ObservableGauge per histogram bucket. A single
// callback reads the service's metrics snapshot on each collection
// cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate service state.
package otel

// Package internaldefs holds the metric name definitions shared by the
// exporter implementations.
//
// Counter and histogram definitions live here so the Prometheus and
// OTel exporters expose identical names and bucket boundaries.
// Changing a definition changes every exporter at once.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs

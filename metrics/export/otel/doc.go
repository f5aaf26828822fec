// Package otel provides OpenTelemetry metric exporter bindings for authbridge counters and
// histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each authbridge metric
// and Int64ObservableGauge per histogram bucket. A single callback reads
// [authbridge.Controller.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate controller state.
package otel

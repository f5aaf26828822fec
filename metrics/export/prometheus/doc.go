// Package prometheus provides Prometheus collectors for authbridge metrics.
//
// [NewPrometheusExporter] accepts an [authbridge.Controller] and exposes an [http.Handler]
// that renders all authbridge counters and histograms in Prometheus text exposition format.
// Counter names are prefixed authbridge_*_total; the single histogram is
// authbridge_authorize_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate controller state.
package prometheus

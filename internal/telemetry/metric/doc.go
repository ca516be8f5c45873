// Package metric provides Prometheus metrics for SharedStore.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry construction and HTTP handler
//   - collector.go: Recording helpers for host and client metrics
//
// Metrics include:
//
//   - Host messages by type and result
//   - Rejected senders
//   - Storage commands by outcome and the indexed key count
//   - Client requests, timeouts, pending conversations and latency
//
// All recording methods accept a nil *Registry, so components can run
// without metrics.
//
// Metrics are exposed at /metrics in Prometheus format.
package metric

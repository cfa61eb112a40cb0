// Package metrics holds the server's counters and gauges and renders them in
// the Prometheus text exposition format for GET /metrics.
package metrics

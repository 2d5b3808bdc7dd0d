// Package metric provides Prometheus-based metrics collection and an HTTP
// exposition server for the event builder pipeline.
//
// MetricsRegistry wraps a *prometheus.Registry and owns the core pipeline
// metrics (Metrics): fragments received and checksum failures per
// contributor, buffer depth, assembly latency and outcome, merge gaps. It
// also implements MetricsRegistrar so individual components can register
// additional counters, gauges, and histograms without reaching into the
// underlying Prometheus registry directly.
//
// Server exposes the registry over HTTP at /metrics (OpenMetrics format)
// plus a plain /health endpoint:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	go server.Start()
//	defer server.Stop()
//
//	registry.CoreMetrics().RecordFragmentReceived("Tracker")
package metric

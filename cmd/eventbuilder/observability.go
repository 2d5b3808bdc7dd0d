package main

import (
	"encoding/json"
	"net/http"

	"github.com/c360/eventbuilder/health"
	"github.com/c360/eventbuilder/metric"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newObservabilityServer serves Prometheus metrics at /metrics and the
// aggregated component health, as JSON, at /healthz.
func newObservabilityServer(addr string, registry *metric.MetricsRegistry, monitor *health.Monitor) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(registry.PrometheusRegistry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		status := monitor.AggregateHealth(appName)
		w.Header().Set("Content-Type", "application/json")
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})

	return &http.Server{Addr: addr, Handler: mux}
}

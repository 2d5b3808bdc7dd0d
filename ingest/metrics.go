package ingest

import (
	"github.com/c360/eventbuilder/metric"
	"github.com/prometheus/client_golang/prometheus"
)

type serverMetrics struct {
	registry *metric.MetricsRegistry
	service  string

	fragmentsReceived prometheus.Counter
	fragmentsRejected prometheus.Counter
	activeConnections prometheus.Gauge
	acceptDuration    prometheus.Histogram
}

func newServerMetrics(registry *metric.MetricsRegistry, service string) (*serverMetrics, error) {
	m := &serverMetrics{
		registry: registry,
		service:  service,
		fragmentsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbuilder",
			Subsystem: "ingest",
			Name:      "fragments_received_total",
			Help:      "Total fragments accepted and enqueued",
		}),
		fragmentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbuilder",
			Subsystem: "ingest",
			Name:      "fragments_rejected_total",
			Help:      "Total fragments dropped for checksum or framing errors",
		}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbuilder",
			Subsystem: "ingest",
			Name:      "active_connections",
			Help:      "Connections currently being read",
		}),
		acceptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eventbuilder",
			Subsystem: "ingest",
			Name:      "accept_duration_seconds",
			Help:      "Time spent blocked in Accept before a connection arrived or the deadline expired",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2},
		}),
	}

	if err := registry.RegisterCounter(service, "fragments_received", m.fragmentsReceived); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(service, "fragments_rejected", m.fragmentsRejected); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(service, "active_connections", m.activeConnections); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram(service, "accept_duration", m.acceptDuration); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *serverMetrics) unregister() {
	m.registry.Unregister(m.service, "fragments_received")
	m.registry.Unregister(m.service, "fragments_rejected")
	m.registry.Unregister(m.service, "active_connections")
	m.registry.Unregister(m.service, "accept_duration")
}

package merger

import (
	"github.com/c360/eventbuilder/metric"
	"github.com/prometheus/client_golang/prometheus"
)

type mergerMetrics struct {
	registry *metric.MetricsRegistry
	service  string

	eventsStored prometheus.Counter
	eventsMerged prometheus.Counter
}

func newMergerMetrics(registry *metric.MetricsRegistry, service string) (*mergerMetrics, error) {
	m := &mergerMetrics{
		registry: registry,
		service:  service,
		eventsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbuilder",
			Subsystem: "merger",
			Name:      "events_stored_total",
			Help:      "Total logical event ids seen for the first time",
		}),
		eventsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbuilder",
			Subsystem: "merger",
			Name:      "events_merged_total",
			Help:      "Total events merged into an already-stored logical event id",
		}),
	}

	if err := registry.RegisterCounter(service, "events_stored", m.eventsStored); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(service, "events_merged", m.eventsMerged); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *mergerMetrics) unregister() {
	m.registry.Unregister(m.service, "events_stored")
	m.registry.Unregister(m.service, "events_merged")
}

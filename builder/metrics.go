package builder

import (
	"github.com/c360/eventbuilder/metric"
	"github.com/prometheus/client_golang/prometheus"
)

type builderMetrics struct {
	registry *metric.MetricsRegistry
	service  string

	eventsAssembled  prometheus.Counter
	eventsForced     prometheus.Counter
	assemblyFailures prometheus.Counter
}

func newBuilderMetrics(registry *metric.MetricsRegistry, service string) (*builderMetrics, error) {
	m := &builderMetrics{
		registry: registry,
		service:  service,
		eventsAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbuilder",
			Subsystem: "builder",
			Name:      "events_assembled_total",
			Help:      "Total combined events handed to the sink",
		}),
		eventsForced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbuilder",
			Subsystem: "builder",
			Name:      "events_forced_total",
			Help:      "Total combined events assembled from a forced, timeout-driven drain",
		}),
		assemblyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbuilder",
			Subsystem: "builder",
			Name:      "assembly_failures_total",
			Help:      "Total drained fragment sets that failed to decode into a combined event",
		}),
	}

	if err := registry.RegisterCounter(service, "events_assembled", m.eventsAssembled); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(service, "events_forced", m.eventsForced); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(service, "assembly_failures", m.assemblyFailures); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *builderMetrics) unregister() {
	m.registry.Unregister(m.service, "events_assembled")
	m.registry.Unregister(m.service, "events_forced")
	m.registry.Unregister(m.service, "assembly_failures")
}

package buffer

import (
	"github.com/c360/eventbuilder/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// bufferMetrics holds the optional Prometheus metrics for one
// TimeIndexedBuffer instance.
type bufferMetrics struct {
	registry *metric.MetricsRegistry
	prefix   string

	added        prometheus.Counter
	drains       prometheus.Counter
	forcedDrains prometheus.Counter
	bucketCount  prometheus.Gauge
}

func newBufferMetrics(registry *metric.MetricsRegistry, prefix string) (*bufferMetrics, error) {
	m := &bufferMetrics{
		registry: registry,
		prefix:   prefix,
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventbuilder",
			Subsystem:   "buffer",
			Name:        "fragments_added_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total fragments added to the time-indexed buffer",
		}),
		drains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventbuilder",
			Subsystem:   "buffer",
			Name:        "drains_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total drains (complete or forced) from the buffer",
		}),
		forcedDrains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventbuilder",
			Subsystem:   "buffer",
			Name:        "forced_drains_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total drains triggered by timeout rather than completeness",
		}),
		bucketCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "eventbuilder",
			Subsystem:   "buffer",
			Name:        "bucket_count",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of distinct timestamps held in the buffer",
		}),
	}

	if err := registry.RegisterCounter(prefix, "buffer_fragments_added", m.added); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "buffer_drains", m.drains); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "buffer_forced_drains", m.forcedDrains); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "buffer_bucket_count", m.bucketCount); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *bufferMetrics) recordAdd(bucketCount int) {
	m.added.Inc()
	m.bucketCount.Set(float64(bucketCount))
}

func (m *bufferMetrics) recordDrain(forced bool, bucketCount int) {
	m.drains.Inc()
	if forced {
		m.forcedDrains.Inc()
	}
	m.bucketCount.Set(float64(bucketCount))
}

func (m *bufferMetrics) unregister() {
	m.registry.Unregister(m.prefix, "buffer_fragments_added")
	m.registry.Unregister(m.prefix, "buffer_drains")
	m.registry.Unregister(m.prefix, "buffer_forced_drains")
	m.registry.Unregister(m.prefix, "buffer_bucket_count")
}

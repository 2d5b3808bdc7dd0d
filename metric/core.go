package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all event builder pipeline metrics.
type Metrics struct {
	// Ingest
	FragmentsReceived  *prometheus.CounterVec
	ChecksumFailures   *prometheus.CounterVec
	ConnectionsOpen    prometheus.Gauge
	ConnectionsTotal   prometheus.Counter
	BytesReceivedTotal prometheus.Counter

	// Decoder
	FramesDecoded    *prometheus.CounterVec
	SyncLossTotal     prometheus.Counter
	FrameOutOfRange   prometheus.Counter

	// Buffer
	BufferDepth        *prometheus.GaugeVec
	BufferAddsTotal     *prometheus.CounterVec
	OldestPendingAgeSec prometheus.Gauge

	// Assembly
	EventsAssembled    *prometheus.CounterVec
	AssemblyLatency    prometheus.Histogram
	ForcedAssemblies   prometheus.Counter
	IncompleteEvents   prometheus.Counter

	// Merger
	MergedEventsTotal prometheus.Counter
	MergeGapsTotal    prometheus.Counter

	// Platform
	ServiceStatus     *prometheus.GaugeVec
	ErrorsTotal       *prometheus.CounterVec
	HealthCheckStatus *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all event builder metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		FragmentsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "ingest",
				Name:      "fragments_received_total",
				Help:      "Total fragments received, by contributor",
			},
			[]string{"contributor"},
		),

		ChecksumFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "ingest",
				Name:      "checksum_failures_total",
				Help:      "Total fragments dropped for checksum mismatch, by contributor",
			},
			[]string{"contributor"},
		),

		ConnectionsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "eventbuilder",
				Subsystem: "ingest",
				Name:      "connections_open",
				Help:      "Number of currently open TCP connections",
			},
		),

		ConnectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "ingest",
				Name:      "connections_total",
				Help:      "Total TCP connections accepted",
			},
		),

		BytesReceivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "ingest",
				Name:      "bytes_received_total",
				Help:      "Total bytes received over all connections",
			},
		),

		FramesDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "decoder",
				Name:      "frames_decoded_total",
				Help:      "Total frames decoded from raw capture, by contributor",
			},
			[]string{"contributor"},
		),

		SyncLossTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "decoder",
				Name:      "sync_loss_total",
				Help:      "Total times the decoder lost sync and had to resynchronize",
			},
		),

		FrameOutOfRange: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "decoder",
				Name:      "frame_out_of_range_total",
				Help:      "Total frames rejected for declared size outside the accepted window",
			},
		),

		BufferDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "eventbuilder",
				Subsystem: "buffer",
				Name:      "depth",
				Help:      "Current number of pending fragments in the buffer, by contributor",
			},
			[]string{"contributor"},
		),

		BufferAddsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "buffer",
				Name:      "adds_total",
				Help:      "Total fragments added to the buffer, by contributor",
			},
			[]string{"contributor"},
		),

		OldestPendingAgeSec: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "eventbuilder",
				Subsystem: "buffer",
				Name:      "oldest_pending_age_seconds",
				Help:      "Age of the oldest pending fragment in the buffer",
			},
		),

		EventsAssembled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "assembly",
				Name:      "events_total",
				Help:      "Total combined events produced, labeled complete or forced",
			},
			[]string{"outcome"},
		),

		AssemblyLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "eventbuilder",
				Subsystem: "assembly",
				Name:      "latency_seconds",
				Help:      "Time from oldest fragment arrival to assembly for a drained window",
				Buckets:   prometheus.DefBuckets,
			},
		),

		ForcedAssemblies: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "assembly",
				Name:      "forced_total",
				Help:      "Total windows assembled by latency timeout rather than completeness",
			},
		),

		IncompleteEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "assembly",
				Name:      "incomplete_total",
				Help:      "Total emitted events missing one or more contributors",
			},
		),

		MergedEventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "merger",
				Name:      "events_total",
				Help:      "Total combined events merged into the output stream",
			},
		),

		MergeGapsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "merger",
				Name:      "gaps_total",
				Help:      "Total logical event id gaps observed during merge",
			},
		),

		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "eventbuilder",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventbuilder",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors, by component and class",
			},
			[]string{"component", "class"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "eventbuilder",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"component"},
		),
	}
}

// RecordFragmentReceived increments the received-fragment counter for a contributor.
func (m *Metrics) RecordFragmentReceived(contributor string) {
	m.FragmentsReceived.WithLabelValues(contributor).Inc()
}

// RecordChecksumFailure increments the checksum-failure counter for a contributor.
func (m *Metrics) RecordChecksumFailure(contributor string) {
	m.ChecksumFailures.WithLabelValues(contributor).Inc()
}

// RecordFrameDecoded increments the decoded-frame counter for a contributor.
func (m *Metrics) RecordFrameDecoded(contributor string) {
	m.FramesDecoded.WithLabelValues(contributor).Inc()
}

// RecordBufferDepth sets the current pending-fragment gauge for a contributor.
func (m *Metrics) RecordBufferDepth(contributor string, depth int) {
	m.BufferDepth.WithLabelValues(contributor).Set(float64(depth))
}

// RecordEventAssembled increments the assembled-event counter for an outcome
// ("complete" or "forced") and observes the assembly latency.
func (m *Metrics) RecordEventAssembled(outcome string, latency time.Duration) {
	m.EventsAssembled.WithLabelValues(outcome).Inc()
	m.AssemblyLatency.Observe(latency.Seconds())
	if outcome == "forced" {
		m.ForcedAssemblies.Inc()
	}
}

// RecordServiceStatus updates the service status gauge.
func (m *Metrics) RecordServiceStatus(service string, status int) {
	m.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordError increments the error counter for a component and class.
func (m *Metrics) RecordError(component, class string) {
	m.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordHealthStatus updates the health check gauge for a component.
func (m *Metrics) RecordHealthStatus(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(value)
}

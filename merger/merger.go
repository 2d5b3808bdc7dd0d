package merger

import (
	"sync"

	"github.com/c360/eventbuilder/fragment"
	"github.com/c360/eventbuilder/metric"
)

// Merger consolidates combined events by LogicalEventID. The first event
// seen for an id is stored as-is; every subsequent event for the same id
// has its ContributorsPresent and per-contributor frames appended, in
// arrival order, to the stored record. Merger is safe for concurrent use.
type Merger struct {
	mu     sync.Mutex
	events map[uint32]*fragment.CombinedEvent

	metrics *mergerMetrics
}

// Option configures a Merger using the functional options pattern.
type Option func(*Merger)

// WithMetrics enables Prometheus metrics export, registered under
// service. If registry is nil or service is empty, this option is
// ignored.
func WithMetrics(registry *metric.MetricsRegistry, service string) Option {
	return func(m *Merger) {
		if registry == nil || service == "" {
			return
		}
		metrics, err := newMergerMetrics(registry, service)
		if err == nil {
			m.metrics = metrics
		}
	}
}

// New creates an empty Merger.
func New(opts ...Option) *Merger {
	m := &Merger{events: make(map[uint32]*fragment.CombinedEvent)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle merges event into the record stored for its LogicalEventID,
// creating that record if this is the first event seen for the id.
// Handle satisfies builder.Sink.
func (m *Merger) Handle(event fragment.CombinedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.events[event.LogicalEventID]
	if !ok {
		stored := event
		m.events[event.LogicalEventID] = &stored
		if m.metrics != nil {
			m.metrics.eventsStored.Inc()
		}
		return nil
	}

	existing.ContributorsPresent = append(existing.ContributorsPresent, event.ContributorsPresent...)
	mergeSubsystem(&existing.Tracker, event.Tracker)
	mergeSubsystem(&existing.HCal, event.HCal)
	mergeSubsystem(&existing.ECal, event.ECal)

	if m.metrics != nil {
		m.metrics.eventsMerged.Inc()
	}
	return nil
}

func mergeSubsystem(existing **fragment.SubsystemPayload, incoming *fragment.SubsystemPayload) {
	if incoming == nil {
		return
	}
	if *existing == nil {
		*existing = incoming
		return
	}
	(*existing).Frames = append((*existing).Frames, incoming.Frames...)
}

// Get returns a copy of the merged record for id, if one has been stored.
func (m *Merger) Get(id uint32) (fragment.CombinedEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.events[id]
	if !ok {
		return fragment.CombinedEvent{}, false
	}
	return *existing, true
}

// Count returns the number of distinct logical event ids currently held.
func (m *Merger) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

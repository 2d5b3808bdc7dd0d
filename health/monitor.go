package health

import (
	"sync"
	"time"
)

// Monitor holds the latest Status reported by each of the pipeline's
// long-running components (the serve command reports ingest and builder)
// and rolls them up into one aggregate for the /healthz endpoint.
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewMonitor creates an empty Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		statuses: make(map[string]Status),
	}
}

// Update records the latest status for a named component, stamping it with
// the component name and a timestamp if the caller didn't set one.
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.statuses[name] = status
}

// Get retrieves the most recently recorded status for a component.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// AggregateHealth rolls up every component's last reported status into one
// Status for systemName: unhealthy if any component is unhealthy, degraded
// if none are unhealthy but at least one is degraded, healthy otherwise.
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subStatuses := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		subStatuses = append(subStatuses, status)
	}

	return Aggregate(systemName, subStatuses)
}

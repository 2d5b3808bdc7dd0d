package health

import (
	"sync"
	"testing"
	"time"
)

func TestNewMonitor(t *testing.T) {
	monitor := NewMonitor()
	if monitor == nil {
		t.Fatal("expected non-nil monitor")
	}
	if _, ok := monitor.Get("ingest"); ok {
		t.Error("expected no status for a fresh monitor")
	}
}

func TestMonitor_UpdateAndGet(t *testing.T) {
	monitor := NewMonitor()

	monitor.Update("ingest", NewHealthy("ingest", "operating normally"))

	status, ok := monitor.Get("ingest")
	if !ok {
		t.Fatal("expected status to be present after Update")
	}
	if status.Component != "ingest" {
		t.Errorf("expected component ingest, got %s", status.Component)
	}
	if !status.IsHealthy() {
		t.Error("expected status to be healthy")
	}
	if status.Timestamp.IsZero() {
		t.Error("expected Update to stamp a timestamp")
	}
}

func TestMonitor_UpdatePreservesCallerTimestamp(t *testing.T) {
	monitor := NewMonitor()
	ts := time.Now().Add(-time.Hour)

	monitor.Update("builder", Status{Status: "healthy", Timestamp: ts})

	status, ok := monitor.Get("builder")
	if !ok {
		t.Fatal("expected status to be present")
	}
	if !status.Timestamp.Equal(ts) {
		t.Errorf("expected caller-provided timestamp to be preserved, got %v", status.Timestamp)
	}
}

func TestMonitor_UpdateOverwritesPriorStatus(t *testing.T) {
	monitor := NewMonitor()

	monitor.Update("merger", NewHealthy("merger", "operating normally"))
	monitor.Update("merger", NewUnhealthy("merger", "output writer closed"))

	status, ok := monitor.Get("merger")
	if !ok {
		t.Fatal("expected status to be present")
	}
	if !status.IsUnhealthy() {
		t.Error("expected the later Update to win")
	}
}

func TestMonitor_Get_UnknownComponent(t *testing.T) {
	monitor := NewMonitor()
	if _, ok := monitor.Get("nonexistent"); ok {
		t.Error("expected ok=false for an unknown component")
	}
}

func TestMonitor_AggregateHealth(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(m *Monitor)
		wantStatus string
	}{
		{
			name:       "nothing reported yet is healthy",
			setup:      func(m *Monitor) {},
			wantStatus: "healthy",
		},
		{
			name: "all components healthy",
			setup: func(m *Monitor) {
				m.Update("ingest", NewHealthy("ingest", "ok"))
				m.Update("builder", NewHealthy("builder", "ok"))
			},
			wantStatus: "healthy",
		},
		{
			name: "one component degraded",
			setup: func(m *Monitor) {
				m.Update("ingest", NewHealthy("ingest", "ok"))
				m.Update("buffer", NewDegraded("buffer", "queue nearing capacity"))
			},
			wantStatus: "degraded",
		},
		{
			name: "one component unhealthy overrides degraded",
			setup: func(m *Monitor) {
				m.Update("buffer", NewDegraded("buffer", "queue nearing capacity"))
				m.Update("merger", NewUnhealthy("merger", "output writer closed"))
			},
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := NewMonitor()
			tt.setup(monitor)

			result := monitor.AggregateHealth("eventbuilder")
			if result.Component != "eventbuilder" {
				t.Errorf("expected component eventbuilder, got %s", result.Component)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, result.Status)
			}
		})
	}
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	monitor := NewMonitor()
	components := []string{"ingest", "buffer", "builder", "merger"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := components[i%len(components)]
			if i%5 == 0 {
				monitor.Update(name, NewDegraded(name, "transient"))
			} else {
				monitor.Update(name, NewHealthy(name, "ok"))
			}
			monitor.Get(name)
			monitor.AggregateHealth("eventbuilder")
		}(i)
	}
	wg.Wait()

	for _, name := range components {
		if _, ok := monitor.Get(name); !ok {
			t.Errorf("expected a status to be recorded for %s", name)
		}
	}
}

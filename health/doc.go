// Package health provides health monitoring for the event builder's
// long-lived workers: the TCP ingest server and the builder loop that
// drains the fragment buffer.
//
// Status carries a three-state health level (healthy/degraded/unhealthy)
// plus an optional message and sub-statuses. Monitor tracks one Status per
// named component under an RWMutex and aggregates them into a single
// system-wide Status for the /healthz HTTP endpoint:
//
//	monitor := health.NewMonitor()
//	monitor.Update("ingest", health.NewHealthy("ingest", "listening on :9000"))
//	monitor.Update("buffer", health.NewDegraded("buffer", "fragment queue above 80% capacity"))
//
//	system := monitor.AggregateHealth("eventbuilder")
//	if system.IsUnhealthy() {
//	    // any unhealthy component marks the whole system unhealthy
//	}
//
// Error messages attached to a Status are sanitized before being exposed
// over HTTP: URLs, file paths, IP addresses, ports, and credential-looking
// substrings are replaced with placeholders. FromError builds a Status
// directly from an error using this sanitization.
package health

// Package config loads the event builder's runtime configuration: the TCP
// ingest port, the coherence window and latency delay applied to the
// fragment buffer, the buffer's drain poll interval, and the metrics/health
// HTTP bind address.
//
// Loader reads an optional JSON file layer, then applies EVENTBUILDER_*
// environment variable overrides, then validates:
//
//	loader := config.NewLoader()
//	loader.AddLayer("/etc/eventbuilder/config.json")
//	cfg, err := loader.Load()
//
// SafeConfig wraps a *Config for concurrent access when the process wants
// to support a live reload.
package config

package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// serveFlags holds the serve subcommand's command-line configuration.
type serveFlags struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

func parseServeFlags(args []string) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg := &serveFlags{}

	fs.StringVar(&cfg.ConfigPath, "config", getEnv("EVENTBUILDER_CONFIG", ""),
		"Path to a JSON configuration file layer (env: EVENTBUILDER_CONFIG)")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("EVENTBUILDER_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: EVENTBUILDER_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("EVENTBUILDER_LOG_FORMAT", "json"),
		"Log format: json, text (env: EVENTBUILDER_LOG_FORMAT)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 10*time.Second,
		"Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := validateServeFlags(cfg); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func validateServeFlags(cfg *serveFlags) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

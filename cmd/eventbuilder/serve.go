package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/eventbuilder/builder"
	"github.com/c360/eventbuilder/buffer"
	"github.com/c360/eventbuilder/config"
	"github.com/c360/eventbuilder/health"
	"github.com/c360/eventbuilder/ingest"
	"github.com/c360/eventbuilder/merger"
	"github.com/c360/eventbuilder/metric"
)

const healthPollInterval = time.Second

func runServe(args []string) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}

	logger := setupLogger(flags.LogLevel, flags.LogFormat)
	slog.SetDefault(logger)

	loader := config.NewLoader()
	if flags.ConfigPath != "" {
		loader.AddLayer(flags.ConfigPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	registry := metric.NewMetricsRegistry()
	buf := buffer.New(buffer.WithMetrics(registry, "eventbuilder"))
	defer buf.Close()

	mrg := merger.New(merger.WithMetrics(registry, "eventbuilder"))

	bld := builder.New(builder.Config{
		CoherenceWindow: cfg.CoherenceWindow,
		LatencyDelay:    cfg.LatencyDelay,
		PollInterval:    cfg.PollInterval,
	}, buf, mrg, builder.WithMetrics(registry, "eventbuilder"), builder.WithLogger(logger))

	ingestSrv := ingest.New(ingest.Config{Addr: fmt.Sprintf(":%d", cfg.TCPPort)}, buf,
		ingest.WithMetrics(registry, "eventbuilder"), ingest.WithLogger(logger))

	monitor := health.NewMonitor()
	httpSrv := newObservabilityServer(cfg.MetricsAddr, registry, monitor)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := ingestSrv.Start(ctx); err != nil {
		return fmt.Errorf("start ingest server: %w", err)
	}
	if err := bld.Start(ctx); err != nil {
		return fmt.Errorf("start builder: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		pollHealth(groupCtx, monitor, ingestSrv, bld)
		return nil
	})
	group.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("observability server: %w", err)
		}
		return nil
	})

	logger.Info("eventbuilder serving", "tcp_port", cfg.TCPPort, "metrics_addr", cfg.MetricsAddr)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), flags.ShutdownTimeout)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	if err := bld.Stop(flags.ShutdownTimeout); err != nil {
		logger.Error("builder shutdown failed", "error", err)
	}
	if err := ingestSrv.Stop(flags.ShutdownTimeout); err != nil {
		logger.Error("ingest server shutdown failed", "error", err)
	}

	if err := group.Wait(); err != nil {
		logger.Error("background task failed", "error", err)
	}

	logger.Info("eventbuilder shutdown complete")
	return nil
}

// healthReporter is satisfied by any component whose Health the
// observability server should aggregate.
type healthReporter interface {
	Health() health.Status
}

func pollHealth(ctx context.Context, monitor *health.Monitor, reporters ...healthReporter) {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, r := range reporters {
				status := r.Health()
				monitor.Update(status.Component, status)
			}
		}
	}
}

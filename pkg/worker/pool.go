// Package worker runs the ingest server's bounded pool of connection
// handlers. Each accepted TCP connection is submitted to the pool rather
// than handled on its own goroutine, so a burst of detector connections
// can't grow the number of concurrently open file descriptors without
// bound.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/eventbuilder/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Pool runs a fixed number of goroutines draining a bounded queue of work
// items of type T, each handled by a caller-supplied handler.
type Pool[T any] struct {
	workers   int
	queueSize int
	handler   func(context.Context, T) error

	workChan chan T
	metrics  *poolMetrics
	wg       *sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	submitted int64
	processed int64
	failed    int64
	dropped   int64

	metricsRegistry *metric.MetricsRegistry
	metricsService  string
}

// poolMetrics holds the Prometheus metrics for one connection pool.
type poolMetrics struct {
	queueDepth     prometheus.Gauge
	utilization    prometheus.Gauge
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

// Option configures a Pool using the functional options pattern.
type Option[T any] func(*Pool[T])

// WithMetrics enables Prometheus metrics for the pool, registered under
// service alongside the rest of the pipeline's component metrics. If
// registry is nil or service is empty, this option is ignored.
func WithMetrics[T any](registry *metric.MetricsRegistry, service string) Option[T] {
	return func(p *Pool[T]) {
		if registry == nil || service == "" {
			return
		}
		p.metricsRegistry = registry
		p.metricsService = service
	}
}

// NewPool creates a connection pool with the given worker count and queue
// depth. handler is invoked once per submitted item; it must not be nil.
func NewPool[T any](workers, queueSize int, handler func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = 10
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	if handler == nil {
		panic(ErrNilProcessor)
	}

	pool := &Pool[T]{
		workers:   workers,
		queueSize: queueSize,
		handler:   handler,
		workChan:  make(chan T, queueSize),
	}

	for _, opt := range opts {
		opt(pool)
	}

	if pool.metricsRegistry != nil && pool.metricsService != "" {
		pool.initializeMetrics()
	}

	return pool
}

func (p *Pool[T]) initializeMetrics() {
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventbuilder",
		Subsystem: "connection_pool",
		Name:      "queue_depth",
		Help:      "Connections currently queued waiting for a free handler",
	})
	utilization := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "eventbuilder",
		Subsystem: "connection_pool",
		Name:      "utilization",
		Help:      "Fraction of the connection queue currently occupied",
	})
	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventbuilder",
		Subsystem: "connection_pool",
		Name:      "submitted_total",
		Help:      "Total connections submitted to the pool",
	})
	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventbuilder",
		Subsystem: "connection_pool",
		Name:      "processed_total",
		Help:      "Total connections fully handled",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventbuilder",
		Subsystem: "connection_pool",
		Name:      "failed_total",
		Help:      "Total connections whose handler returned an error",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventbuilder",
		Subsystem: "connection_pool",
		Name:      "dropped_total",
		Help:      "Total connections dropped because the queue was full",
	})
	processingTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventbuilder",
		Subsystem: "connection_pool",
		Name:      "handle_duration_seconds",
		Help:      "Time spent handling one connection",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"status"})

	registry := p.metricsRegistry
	service := p.metricsService
	_ = registry.RegisterGauge(service, "connection_pool_queue_depth", queueDepth)
	_ = registry.RegisterGauge(service, "connection_pool_utilization", utilization)
	_ = registry.RegisterCounter(service, "connection_pool_submitted", submitted)
	_ = registry.RegisterCounter(service, "connection_pool_processed", processed)
	_ = registry.RegisterCounter(service, "connection_pool_failed", failed)
	_ = registry.RegisterCounter(service, "connection_pool_dropped", dropped)
	_ = registry.RegisterHistogramVec(service, "connection_pool_handle_duration", processingTime)

	p.metrics = &poolMetrics{
		queueDepth:     queueDepth,
		utilization:    utilization,
		submitted:      submitted,
		processed:      processed,
		failed:         failed,
		dropped:        dropped,
		processingTime: processingTime,
	}
}

// Submit enqueues work for handling. It returns ErrQueueFull rather than
// blocking when the queue is at capacity, so a connection burst degrades
// by dropping new connections instead of stalling the accept loop.
func (p *Pool[T]) Submit(work T) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.workChan <- work:
		atomic.AddInt64(&p.submitted, 1)
		if p.metrics != nil {
			p.metrics.submitted.Inc()
			p.metrics.queueDepth.Set(float64(len(p.workChan)))
		}
		return nil
	default:
		atomic.AddInt64(&p.dropped, 1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return ErrQueueFull
	}
}

// Start launches the pool's handler goroutines.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}

	p.wg = &sync.WaitGroup{}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}

	if p.metrics != nil {
		go p.reportUtilization(ctx)
	}

	p.started = true
	return nil
}

// Stop closes the work queue and waits up to timeout for in-flight and
// queued connections to finish.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started || p.stopped {
		return nil
	}

	close(p.workChan)
	p.stopped = true

	done := make(chan struct{})
	go func() {
		if p.wg != nil {
			p.wg.Wait()
		}
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats reports the pool's current counters.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: len(p.workChan),
		Submitted:  atomic.LoadInt64(&p.submitted),
		Processed:  atomic.LoadInt64(&p.processed),
		Failed:     atomic.LoadInt64(&p.failed),
		Dropped:    atomic.LoadInt64(&p.dropped),
	}
}

// PoolStats is a snapshot of a Pool's counters.
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

func (p *Pool[T]) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-p.workChan:
			if !ok {
				return
			}

			start := time.Now()
			err := p.handler(ctx, work)
			duration := time.Since(start)

			atomic.AddInt64(&p.processed, 1)
			if err != nil {
				atomic.AddInt64(&p.failed, 1)
			}

			if p.metrics != nil {
				p.metrics.processed.Inc()
				status := "success"
				if err != nil {
					p.metrics.failed.Inc()
					status = "error"
				}
				p.metrics.processingTime.WithLabelValues(status).Observe(duration.Seconds())
			}
		}
	}
}

// reportUtilization periodically samples queue depth so it's visible even
// between submissions. It runs until ctx is cancelled; Stop does not wait
// for it.
func (p *Pool[T]) reportUtilization(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.metrics != nil {
				queueDepth := float64(len(p.workChan))
				p.metrics.queueDepth.Set(queueDepth)
				p.metrics.utilization.Set(queueDepth / float64(p.queueSize))
			}
		}
	}
}

package builder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/eventbuilder/assemble"
	"github.com/c360/eventbuilder/buffer"
	"github.com/c360/eventbuilder/errors"
	"github.com/c360/eventbuilder/fragment"
	"github.com/c360/eventbuilder/health"
	"github.com/c360/eventbuilder/metric"
)

// Sink receives combined events as they are assembled.
type Sink interface {
	Handle(event fragment.CombinedEvent) error
}

// Config configures a Builder.
type Config struct {
	// CoherenceWindow bounds how far apart, in either direction, two
	// fragments' timestamps may be and still belong to the same event.
	CoherenceWindow time.Duration
	// LatencyDelay is subtracted from the current time to compute the
	// reference point a non-forced assembly anchors on, giving slow
	// contributors a chance to arrive before their fragments are
	// considered for assembly.
	LatencyDelay time.Duration
	// PollInterval is how often the buffer is checked for assemblable
	// fragment sets.
	PollInterval time.Duration
	// RequiredContributors is reserved for a future configurable
	// completeness gate. The buffer's non-forced drain currently always
	// requires Tracker, HCal, and ECal; this field has no effect yet.
	RequiredContributors []fragment.Contributor
}

func (c Config) withDefaults() Config {
	if c.CoherenceWindow <= 0 {
		c.CoherenceWindow = time.Millisecond
	}
	if c.LatencyDelay <= 0 {
		c.LatencyDelay = 2 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Millisecond
	}
	return c
}

// Builder periodically drains the fragment buffer and forwards assembled
// events to a Sink. Expired fragments are given priority: if the buffer's
// oldest fragment is older than the latency delay plus the coherence
// window, that region is force drained (possibly producing a partial
// event) instead of attempting a normal, completeness-gated drain on that
// tick.
type Builder struct {
	cfg    Config
	buf    *buffer.TimeIndexedBuffer
	sink   Sink
	logger *slog.Logger

	ticker    *time.Ticker
	shutdown  chan struct{}
	done      chan struct{}
	running   atomic.Bool
	startTime time.Time
	mu        sync.Mutex
	wg        sync.WaitGroup

	errorCount atomic.Int64
	metrics    *builderMetrics
}

// Option configures a Builder using the functional options pattern.
type Option func(*Builder)

// WithMetrics enables Prometheus metrics export, registered under
// service. If registry is nil or service is empty, this option is
// ignored.
func WithMetrics(registry *metric.MetricsRegistry, service string) Option {
	return func(b *Builder) {
		if registry == nil || service == "" {
			return
		}
		m, err := newBuilderMetrics(registry, service)
		if err == nil {
			b.metrics = m
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Builder that drains buf and forwards assembled events to
// sink.
func New(cfg Config, buf *buffer.TimeIndexedBuffer, sink Sink, opts ...Option) *Builder {
	cfg = cfg.withDefaults()

	b := &Builder{
		cfg:    cfg,
		buf:    buf,
		sink:   sink,
		logger: slog.Default().With("component", "builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start launches the poll loop.
func (b *Builder) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running.Load() {
		return errors.ErrAlreadyStarted
	}

	b.ticker = time.NewTicker(b.cfg.PollInterval)
	b.shutdown = make(chan struct{})
	b.done = make(chan struct{})
	b.running.Store(true)
	b.startTime = time.Now()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(b.done)
		b.pollLoop(ctx)
	}()

	return nil
}

func (b *Builder) pollLoop(ctx context.Context) {
	defer b.ticker.Stop()
	for {
		select {
		case <-b.shutdown:
			return
		case <-ctx.Done():
			return
		case <-b.ticker.C:
			b.tick()
		}
	}
}

// tick runs one drain attempt. Expired fragments take priority: when the
// oldest fragment is older than the latency delay plus the coherence
// window, the region around it is force drained, which may yield a
// partial event, and the tick ends there; otherwise a normal
// completeness-gated drain is attempted.
func (b *Builder) tick() {
	window := int64(b.cfg.CoherenceWindow)
	referenceTime := time.Now().UnixNano() - int64(b.cfg.LatencyDelay)

	if b.buf.HasExpired(referenceTime, window) {
		if frags, ok := b.buf.TryAssemble(referenceTime, window, true); ok {
			b.emit(frags, true)
		}
		return
	}

	if frags, ok := b.buf.TryAssemble(referenceTime, window, false); ok {
		b.emit(frags, false)
	}
}

func (b *Builder) emit(frags []fragment.Fragment, forced bool) {
	event, err := assemble.Build(frags)
	if err != nil {
		b.errorCount.Add(1)
		if b.metrics != nil {
			b.metrics.assemblyFailures.Inc()
		}
		b.logger.Error("assembly failed, dropping drained fragment set", "error", err, "forced", forced, "fragments", len(frags))
		return
	}

	if b.metrics != nil {
		b.metrics.eventsAssembled.Inc()
		if forced {
			b.metrics.eventsForced.Inc()
		}
	}

	if err := b.sink.Handle(event); err != nil {
		b.errorCount.Add(1)
		b.logger.Error("sink rejected assembled event", "error", err, "forced", forced)
	}
}

// Stop signals the poll loop to stop and waits up to timeout for it to
// finish.
func (b *Builder) Stop(timeout time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running.Load() {
		return nil
	}
	b.running.Store(false)
	close(b.shutdown)

	select {
	case <-b.done:
	case <-time.After(timeout):
		return errors.WrapTransient(errors.ErrConnectionTimeout, "builder", "Stop", "poll loop shutdown")
	}

	if b.metrics != nil {
		b.metrics.unregister()
	}
	return nil
}

// Health reports the builder's current health for the shared health
// monitor.
func (b *Builder) Health() health.Status {
	return health.FromError("builder", time.Since(b.startTime), int(b.errorCount.Load()), b.healthError())
}

func (b *Builder) healthError() error {
	if !b.running.Load() {
		return errors.ErrNotStarted
	}
	return nil
}

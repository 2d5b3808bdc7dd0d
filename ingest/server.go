package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360/eventbuilder/buffer"
	"github.com/c360/eventbuilder/codec"
	"github.com/c360/eventbuilder/errors"
	"github.com/c360/eventbuilder/health"
	"github.com/c360/eventbuilder/metric"
	"github.com/c360/eventbuilder/pkg/retry"
	"github.com/c360/eventbuilder/pkg/worker"
)

// acceptWait bounds how long Accept blocks before the listener's deadline
// forces it to return, so the accept loop can observe a shutdown request.
const acceptWait = 1 * time.Second

// Config configures a Server.
type Config struct {
	// Addr is the TCP address to listen on, e.g. ":9000".
	Addr string
	// ConnectionWorkers bounds the number of connections handled
	// concurrently.
	ConnectionWorkers int
	// ConnectionQueueSize bounds how many accepted connections may be
	// queued for a free worker before new connections are refused.
	ConnectionQueueSize int
}

func (c Config) withDefaults() Config {
	if c.ConnectionWorkers <= 0 {
		c.ConnectionWorkers = 32
	}
	if c.ConnectionQueueSize <= 0 {
		c.ConnectionQueueSize = 256
	}
	return c
}

// Server is a TCP listener that accepts exactly one fragment per
// connection and enqueues it into a TimeIndexedBuffer.
type Server struct {
	cfg    Config
	buf    *buffer.TimeIndexedBuffer
	logger *slog.Logger
	pool   *worker.Pool[net.Conn]

	listener  *net.TCPListener
	shutdown  chan struct{}
	done      chan struct{}
	running   atomic.Bool
	startTime time.Time
	mu        sync.Mutex
	wg        sync.WaitGroup

	errorCount atomic.Int64
	metrics    *serverMetrics

	poolRegistry *metric.MetricsRegistry
	poolService  string
}

// Option configures a Server using the functional options pattern.
type Option func(*Server)

// WithMetrics enables Prometheus metrics export, registered under
// service. If registry is nil or service is empty, this option is
// ignored.
func WithMetrics(registry *metric.MetricsRegistry, service string) Option {
	return func(s *Server) {
		if registry == nil || service == "" {
			return
		}
		m, err := newServerMetrics(registry, service)
		if err == nil {
			s.metrics = m
		}
		s.poolRegistry = registry
		s.poolService = service
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server that enqueues accepted fragments into buf.
func New(cfg Config, buf *buffer.TimeIndexedBuffer, opts ...Option) *Server {
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:    cfg,
		buf:    buf,
		logger: slog.Default().With("component", "ingest", "addr", cfg.Addr),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener, retrying with backoff, and launches the accept
// loop and the connection worker pool.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.ErrAlreadyStarted
	}

	listener, err := s.bindWithRetry(ctx)
	if err != nil {
		return errors.WrapFatal(err, "ingest", "Start", "bind listener")
	}
	s.listener = listener

	var poolOpts []worker.Option[net.Conn]
	if s.poolRegistry != nil && s.poolService != "" {
		poolOpts = append(poolOpts, worker.WithMetrics[net.Conn](s.poolRegistry, s.poolService))
	}
	s.pool = worker.NewPool(s.cfg.ConnectionWorkers, s.cfg.ConnectionQueueSize, s.handleConnection, poolOpts...)
	if err := s.pool.Start(ctx); err != nil {
		_ = listener.Close()
		return errors.WrapFatal(err, "ingest", "Start", "start connection pool")
	}

	s.shutdown = make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)
	s.startTime = time.Now()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(s.done)
		s.acceptLoop(ctx)
	}()

	return nil
}

func (s *Server) bindWithRetry(ctx context.Context) (*net.TCPListener, error) {
	var listener *net.TCPListener
	bind := func() error {
		l, err := net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return err
		}
		tcpListener, ok := l.(*net.TCPListener)
		if !ok {
			_ = l.Close()
			return fmt.Errorf("listener for %q is not a TCP listener", s.cfg.Addr)
		}
		listener = tcpListener
		return nil
	}
	if err := retry.Do(ctx, retry.DefaultConfig(), bind); err != nil {
		return nil, err
	}
	return listener, nil
}

// acceptLoop accepts connections with a bounded wait, handing each to the
// connection worker pool, until shutdown is signaled.
func (s *Server) acceptLoop(ctx context.Context) {
	for {
		select {
		case <-s.shutdown:
			return
		case <-ctx.Done():
			return
		default:
		}

		_ = s.listener.SetDeadline(time.Now().Add(acceptWait))

		start := time.Now()
		conn, err := s.listener.Accept()
		if s.metrics != nil {
			s.metrics.acceptDuration.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-s.shutdown:
				return
			default:
				s.logger.Error("accept failed", "error", err)
				s.errorCount.Add(1)
				continue
			}
		}

		if err := s.pool.Submit(conn); err != nil {
			s.logger.Warn("dropping connection, pool unavailable", "error", err)
			_ = conn.Close()
		}
	}
}

// handleConnection reads exactly one fragment message from conn,
// validates it, and enqueues it into the buffer. The connection is always
// closed before returning.
func (s *Server) handleConnection(_ context.Context, conn net.Conn) error {
	defer conn.Close()

	connID := uuid.NewString()
	logger := s.logger.With("connection_id", connID)

	if s.metrics != nil {
		s.metrics.activeConnections.Inc()
		defer s.metrics.activeConnections.Dec()
	}

	msg, err := codec.ReadMessage(conn)
	if err != nil {
		s.errorCount.Add(1)
		if s.metrics != nil {
			s.metrics.fragmentsRejected.Inc()
		}
		logger.Warn("dropping connection, invalid message", "error", err)
		return err
	}

	s.buf.Add(msg.ToFragment())
	if s.metrics != nil {
		s.metrics.fragmentsReceived.Inc()
	}
	logger.Debug("fragment enqueued", "contributor", msg.Contributor, "logical_event_id", msg.LogicalEventID)
	return nil
}

// Stop signals the accept loop and worker pool to stop and waits up to
// timeout for them to drain.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)

	close(s.shutdown)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		return errors.WrapTransient(errors.ErrConnectionTimeout, "ingest", "Stop", "accept loop shutdown")
	}

	if s.pool != nil {
		if err := s.pool.Stop(timeout); err != nil {
			return errors.WrapTransient(err, "ingest", "Stop", "connection pool shutdown")
		}
	}

	if s.metrics != nil {
		s.metrics.unregister()
	}
	return nil
}

// Health reports the server's current health for the shared health
// monitor.
func (s *Server) Health() health.Status {
	return health.FromError("ingest", time.Since(s.startTime), int(s.errorCount.Load()), s.healthError())
}

func (s *Server) healthError() error {
	if !s.running.Load() {
		return errors.ErrNotStarted
	}
	return nil
}

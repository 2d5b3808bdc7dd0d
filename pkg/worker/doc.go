// Package worker is a generic, bounded worker pool. The ingest server uses
// it to cap how many accepted TCP connections are handled concurrently:
// workers drain a fixed-size queue, and Submit returns ErrQueueFull rather
// than blocking once the queue is at capacity.
//
//	pool := worker.NewPool(32, 256, func(ctx context.Context, conn net.Conn) error {
//		return handle(ctx, conn)
//	})
//	if err := pool.Start(ctx); err != nil {
//		return err
//	}
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(conn); err != nil {
//		conn.Close() // queue full, drop the connection
//	}
//
// With metrics, registered under the same service name as the rest of the
// pipeline's components:
//
//	pool := worker.NewPool(32, 256, handle, worker.WithMetrics[net.Conn](registry, "eventbuilder"))
//
// Start() can only be called once. Stop() is idempotent and waits up to its
// timeout for queued and in-flight connections to drain before returning
// ErrStopTimeout. Worker count is fixed at construction; this pool does not
// scale dynamically.
package worker

package worker

import "errors"

// Sentinel errors for connection pool lifecycle violations.
var (
	// ErrPoolNotStarted indicates Submit was called before Start.
	ErrPoolNotStarted = errors.New("connection pool not started")

	// ErrPoolStopped indicates Submit was called after Stop.
	ErrPoolStopped = errors.New("connection pool stopped")

	// ErrPoolAlreadyStarted indicates Start was called on a running pool.
	ErrPoolAlreadyStarted = errors.New("connection pool already started")

	// ErrQueueFull indicates the connection queue is at capacity.
	ErrQueueFull = errors.New("connection pool queue full")

	// ErrNilProcessor indicates NewPool was given a nil handler.
	ErrNilProcessor = errors.New("connection handler cannot be nil")

	// ErrStopTimeout indicates workers did not drain within Stop's timeout.
	ErrStopTimeout = errors.New("timeout waiting for connection pool to stop")
)

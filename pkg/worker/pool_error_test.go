package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestPool_SentinelErrors verifies that each lifecycle violation returns
// its own sentinel, unwrapped, so callers can branch on errors.Is.
func TestPool_SentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{
			name: "ErrPoolNotStarted when submitting before start",
			test: func(t *testing.T) {
				handle := func(_ context.Context, _ testConnection) error { return nil }
				pool := NewPool(2, 10, handle)

				err := pool.Submit(testConnection{id: 1})
				if !errors.Is(err, ErrPoolNotStarted) {
					t.Errorf("expected ErrPoolNotStarted, got %v", err)
				}
			},
		},
		{
			name: "ErrPoolAlreadyStarted when starting twice",
			test: func(t *testing.T) {
				handle := func(_ context.Context, _ testConnection) error { return nil }
				pool := NewPool(2, 10, handle)

				ctx := context.Background()
				if err := pool.Start(ctx); err != nil {
					t.Fatalf("start: %v", err)
				}
				defer pool.Stop(5 * time.Second)

				if err := pool.Start(ctx); !errors.Is(err, ErrPoolAlreadyStarted) {
					t.Errorf("expected ErrPoolAlreadyStarted, got %v", err)
				}
			},
		},
		{
			name: "ErrPoolStopped when submitting after stop",
			test: func(t *testing.T) {
				handle := func(_ context.Context, _ testConnection) error { return nil }
				pool := NewPool(2, 10, handle)

				ctx := context.Background()
				if err := pool.Start(ctx); err != nil {
					t.Fatalf("start: %v", err)
				}
				if err := pool.Stop(5 * time.Second); err != nil {
					t.Fatalf("stop: %v", err)
				}

				if err := pool.Submit(testConnection{id: 1}); !errors.Is(err, ErrPoolStopped) {
					t.Errorf("expected ErrPoolStopped, got %v", err)
				}
			},
		},
		{
			name: "ErrQueueFull once the queue is at capacity",
			test: func(t *testing.T) {
				handle := func(_ context.Context, _ testConnection) error {
					time.Sleep(1 * time.Second)
					return nil
				}

				pool := NewPool(1, 2, handle)

				ctx := context.Background()
				if err := pool.Start(ctx); err != nil {
					t.Fatalf("start: %v", err)
				}
				defer pool.Stop(5 * time.Second)

				var queueFullErr error
				for i := 0; i < 10; i++ {
					if err := pool.Submit(testConnection{id: i}); err != nil {
						queueFullErr = err
						break
					}
				}

				if !errors.Is(queueFullErr, ErrQueueFull) {
					t.Errorf("expected ErrQueueFull, got %v", queueFullErr)
				}
			},
		},
		{
			name: "ErrStopTimeout when a handler outlives the stop deadline",
			test: func(t *testing.T) {
				handle := func(ctx context.Context, _ testConnection) error {
					select {
					case <-time.After(10 * time.Second):
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				}

				pool := NewPool(1, 10, handle)

				ctx := context.Background()
				if err := pool.Start(ctx); err != nil {
					t.Fatalf("start: %v", err)
				}

				_ = pool.Submit(testConnection{id: 1})
				time.Sleep(10 * time.Millisecond)

				if err := pool.Stop(50 * time.Millisecond); !errors.Is(err, ErrStopTimeout) {
					t.Errorf("expected ErrStopTimeout, got %v", err)
				}
			},
		},
		{
			name: "ErrNilProcessor when constructing a pool with a nil handler",
			test: func(t *testing.T) {
				defer func() {
					r := recover()
					if r == nil {
						t.Error("expected panic for nil handler")
						return
					}
					if !errors.Is(r.(error), ErrNilProcessor) {
						t.Errorf("expected panic with ErrNilProcessor, got %v", r)
					}
				}()
				NewPool[testConnection](5, 100, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.test(t)
		})
	}
}

// TestPool_ErrorsAreNotWrapped verifies callers can compare sentinels
// directly, without unwrapping through errors.Is.
func TestPool_ErrorsAreNotWrapped(t *testing.T) {
	handle := func(ctx context.Context, _ testConnection) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	pool := NewPool(2, 10, handle)

	err := pool.Submit(testConnection{id: 1})
	if !errors.Is(err, ErrPoolNotStarted) {
		t.Errorf("errors.Is failed for ErrPoolNotStarted: %v", err)
	}
	if err != ErrPoolNotStarted {
		t.Errorf("expected exact sentinel error ErrPoolNotStarted, got %v", err)
	}
}

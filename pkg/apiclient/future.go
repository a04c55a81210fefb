package apiclient

import (
	"context"
	"time"
)

// Future is the pending result of a call started with SendAsync.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// SendAsync starts Send in its own goroutine and returns immediately.
// Cancel ctx to abandon the call; the future then completes with ctx's error.
func SendAsync[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		f.result, f.err = Send[T](ctx, c, path, opts...)
	}()

	return f
}

// Await blocks until the call finishes and returns its outcome.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout is Await bounded by timeout. On timeout it returns
// ErrAwaitTimeout; the call itself keeps running.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrAwaitTimeout
	}
}

// Done is closed once the call has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the call has finished, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

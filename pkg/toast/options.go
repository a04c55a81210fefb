package toast

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the clock expiry timers run on. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(q *Queue) {
		if c != nil {
			q.clock = c
		}
	}
}

// WithLogger sets the logger for the Queue.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithDefaultLifetime sets the lifetime of messages pushed without one.
// Zero or negative makes messages persistent by default.
func WithDefaultLifetime(d time.Duration) Option {
	return func(q *Queue) {
		q.lifetime = d
	}
}

type messageOptions struct {
	lifetime time.Duration
}

// MessageOption configures a single pushed message.
type MessageOption func(*messageOptions)

// WithLifetime sets how long the message stays. Zero or negative means
// it stays until dismissed.
func WithLifetime(d time.Duration) MessageOption {
	return func(o *messageOptions) {
		o.lifetime = d
	}
}

// Persistent keeps the message until it is dismissed.
func Persistent() MessageOption {
	return WithLifetime(0)
}

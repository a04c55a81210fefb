package feedback

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithClock sets the clock the redirect delay runs on.
func WithClock(c clockwork.Clock) Option {
	return func(r *Reporter) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger for the Reporter.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLoginPath sets where unauthorized failures send the user.
func WithLoginPath(path string) Option {
	return func(r *Reporter) {
		if path != "" {
			r.loginPath = path
		}
	}
}

// WithRedirectDelay sets how long the session-expired message is readable
// before navigation happens.
func WithRedirectDelay(d time.Duration) Option {
	return func(r *Reporter) {
		if d >= 0 {
			r.redirectDelay = d
		}
	}
}

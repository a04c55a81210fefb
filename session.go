package taskclient

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/taskclient/pkg/account"
	"github.com/dmitrymomot/taskclient/pkg/apiclient"
	"github.com/dmitrymomot/taskclient/pkg/config"
	"github.com/dmitrymomot/taskclient/pkg/feedback"
	"github.com/dmitrymomot/taskclient/pkg/logger"
	"github.com/dmitrymomot/taskclient/pkg/tasks"
	"github.com/dmitrymomot/taskclient/pkg/toast"
)

const serviceName = "taskclient"

// Session wires one user session: the gateway, the notification queue, the
// error reporter and the typed services. Build it once per UI session and
// pass it to whatever needs it.
type Session struct {
	Config   config.Config
	Logger   *slog.Logger
	Client   *apiclient.Client
	Toasts   *toast.Queue
	Feedback *feedback.Reporter
	Tasks    *tasks.Service
	Account  *account.Service
}

// SessionOption configures NewSession.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	logger     *slog.Logger
	clock      clockwork.Clock
	httpClient *http.Client
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// WithClock sets the clock driving message expiry and the login redirect.
func WithClock(c clockwork.Clock) SessionOption {
	return func(o *sessionOptions) {
		o.clock = c
	}
}

// WithHTTPClient sets the HTTP client under the gateway.
func WithHTTPClient(hc *http.Client) SessionOption {
	return func(o *sessionOptions) {
		o.httpClient = hc
	}
}

// NewSession validates cfg and builds a session. nav receives the login
// redirect after an expired session; it may be nil.
func NewSession(cfg config.Config, nav feedback.Navigator, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &sessionOptions{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger
	if log == nil {
		var err error
		if log, err = NewLogger(cfg); err != nil {
			return nil, err
		}
	}

	clientOpts := []apiclient.Option{
		apiclient.WithBaseURL(cfg.APIURL),
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(log.With(logger.Component("gateway"))),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	if cfg.RateLimit > 0 {
		burst := max(int(cfg.RateLimit), 1)
		clientOpts = append(clientOpts, apiclient.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
	}
	client := apiclient.New(clientOpts...)

	queue := toast.New(
		toast.WithClock(o.clock),
		toast.WithLogger(log.With(logger.Component("toast"))),
		toast.WithDefaultLifetime(cfg.ToastLifetime),
	)

	reporter := feedback.New(queue, nav,
		feedback.WithClock(o.clock),
		feedback.WithLogger(log.With(logger.Component("feedback"))),
		feedback.WithLoginPath(cfg.LoginPath),
		feedback.WithRedirectDelay(cfg.RedirectDelay),
	)

	return &Session{
		Config:   cfg,
		Logger:   log,
		Client:   client,
		Toasts:   queue,
		Feedback: reporter,
		Tasks:    tasks.NewService(client),
		Account:  account.NewService(client),
	}, nil
}

// Close cancels the pending redirect, then every message timer and
// subscription.
func (s *Session) Close() error {
	return errors.Join(s.Feedback.Close(), s.Toasts.Close())
}

// NewLogger builds the session logger from cfg: per-environment defaults,
// overridden by LOG_LEVEL and LOG_FORMAT when set.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithContextExtractors(logger.RequestIDExtractor()),
	}
	if cfg.LogLevel != "" {
		if _, ok := logger.ParseLevel(cfg.LogLevel); !ok {
			return nil, fmt.Errorf("%w: unknown log level %q", config.ErrInvalidConfig, cfg.LogLevel)
		}
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	if cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	return logger.New(opts...), nil
}

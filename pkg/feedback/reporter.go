package feedback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dmitrymomot/taskclient/pkg/apierror"
	"github.com/dmitrymomot/taskclient/pkg/logger"
	"github.com/dmitrymomot/taskclient/pkg/toast"
)

// User-facing texts.
const (
	MessageSessionExpired = "Session expired. Please login again."
	MessageFixValidation  = "Please fix the validation errors"
	MessageUnexpected     = "An unexpected error occurred"
)

const (
	DefaultLoginPath     = "/login"
	DefaultRedirectDelay = 1500 * time.Millisecond
)

// Notifier is the part of the notification queue the reporter needs.
type Notifier interface {
	Push(text string, kind toast.Kind, opts ...toast.MessageOption) string
}

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// Outcome tells the caller what Report did with a failure.
type Outcome struct {
	Kind        apierror.Kind
	MessageID   string
	FieldErrors map[string]string // set for validation failures with per-field detail
	Redirecting bool              // a login redirect is pending
}

// Reporter turns failures into user feedback with one fixed policy, so every
// screen reacts the same way.
type Reporter struct {
	notifier      Notifier
	navigator     Navigator
	clock         clockwork.Clock
	logger        *slog.Logger
	loginPath     string
	redirectDelay time.Duration

	mu       sync.Mutex
	redirect *pendingRedirect
	closed   bool
}

type pendingRedirect struct {
	timer clockwork.Timer
}

// New creates a reporter. navigator may be nil, in which case unauthorized
// failures are reported without a redirect.
func New(notifier Notifier, navigator Navigator, opts ...Option) *Reporter {
	r := &Reporter{
		notifier:      notifier,
		navigator:     navigator,
		clock:         clockwork.NewRealClock(),
		logger:        slog.Default(),
		loginPath:     DefaultLoginPath,
		redirectDelay: DefaultRedirectDelay,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Report surfaces err as exactly one notification and returns what was done.
// Branches are tried in a fixed order:
//
//  1. unauthorized: session-expired message and a delayed redirect to login
//  2. validation: per-field errors plus a summary, or the server's message
//  3. any other APIError: its message, or fallback when it has none
//  4. anything else: a generic message; the error is logged
//
// A nil err does nothing.
func (r *Reporter) Report(ctx context.Context, err error, fallback string) Outcome {
	out := Outcome{Kind: apierror.Classify(err)}
	if err == nil {
		return out
	}

	switch {
	case apierror.IsUnauthorized(err):
		out.MessageID = r.notifier.Push(MessageSessionExpired, toast.KindError)
		out.Redirecting = r.scheduleRedirect(ctx)

	case apierror.IsValidationError(err):
		if fields := apierror.FieldErrors(err); len(fields) > 0 {
			out.FieldErrors = fields
			out.MessageID = r.notifier.Push(MessageFixValidation, toast.KindError)
		} else {
			out.MessageID = r.notifier.Push(messageOr(err, fallback), toast.KindError)
		}

	default:
		if _, ok := apierror.As(err); ok {
			out.MessageID = r.notifier.Push(messageOr(err, fallback), toast.KindError)
			break
		}
		r.logger.LogAttrs(ctx, slog.LevelError, "Unclassified failure",
			logger.Kind(out.Kind.String()),
			logger.Error(err),
		)
		out.MessageID = r.notifier.Push(MessageUnexpected, toast.KindError)
	}

	return out
}

// Succeed pushes a success message.
func (r *Reporter) Succeed(text string) string {
	return r.notifier.Push(text, toast.KindSuccess)
}

// RedirectPending reports whether a login redirect is scheduled.
func (r *Reporter) RedirectPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirect != nil
}

// Close cancels a pending redirect. Later unauthorized failures are still
// reported but no longer redirect. Close is idempotent.
func (r *Reporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.redirect != nil {
		r.redirect.timer.Stop()
		r.redirect = nil
	}
	return nil
}

// scheduleRedirect arms at most one pending redirect at a time.
func (r *Reporter) scheduleRedirect(ctx context.Context) bool {
	if r.navigator == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	if r.redirect != nil {
		return true
	}

	// The redirect outlives the failed call; keep ctx values, drop its deadline.
	navCtx := context.WithoutCancel(ctx)
	p := &pendingRedirect{}
	p.timer = r.clock.AfterFunc(r.redirectDelay, func() { r.fire(navCtx, p) })
	r.redirect = p
	return true
}

func (r *Reporter) fire(ctx context.Context, p *pendingRedirect) {
	r.mu.Lock()
	if r.redirect != p {
		r.mu.Unlock()
		return
	}
	r.redirect = nil
	r.mu.Unlock()

	r.logger.LogAttrs(ctx, slog.LevelInfo, "Redirecting to login",
		logger.Path(r.loginPath),
	)
	r.navigator.Navigate(ctx, r.loginPath)
}

func messageOr(err error, fallback string) string {
	if apiErr, ok := apierror.As(err); ok && apiErr.Message() != "" {
		return apiErr.Message()
	}
	if fallback != "" {
		return fallback
	}
	return MessageUnexpected
}

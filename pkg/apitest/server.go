package apitest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/jonboulle/clockwork"
)

// DefaultPrefix is the path prefix the API is mounted under.
const DefaultPrefix = "/api/v1"

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "access_token"

// Server is an in-memory task backend served over HTTP. It keeps users,
// sessions and tasks in memory and answers with the status codes and error
// bodies the real backend uses.
type Server struct {
	srv    *httptest.Server
	prefix string
	clock  clockwork.Clock
	logOut io.Writer

	mu       sync.Mutex
	users    map[string]*user // by email
	sessions map[string]string
	tasks    map[int64]*taskRecord
	notified []Notification
	nextUser int64
	nextTask int64
	failures []failure

	requests atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

// WithPrefix mounts the API under prefix instead of DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Server) {
		s.prefix = prefix
	}
}

// WithClock sets the clock used for creation times and overdue filtering.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRequestLog writes a JSON access log line per request to w.
func WithRequestLog(w io.Writer) Option {
	return func(s *Server) {
		s.logOut = w
	}
}

// WithUser seeds an account.
func WithUser(email, password, fullName string) Option {
	return func(s *Server) {
		s.addUser(email, password, fullName)
	}
}

// NewServer starts a backend. Call Close when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		prefix:   DefaultPrefix,
		clock:    clockwork.NewRealClock(),
		users:    make(map[string]*user),
		sessions: make(map[string]string),
		tasks:    make(map[int64]*taskRecord),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	if s.logOut != nil {
		r.Use(httplog.RequestLogger(httplog.NewLogger("apitest", httplog.Options{
			Writer: s.logOut,
			JSON:   true,
		})))
	}
	r.Use(s.countRequests, s.injectFailures)

	api := func(r chi.Router) {
		r.Post("/login/access-token", s.handleLogin)
		r.Post("/users/open", s.handleSignup)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/users/me", s.handleMe)
			r.Get("/tasks/", s.handleListTasks)
			r.Post("/tasks/", s.handleCreateTask)
			r.Get("/tasks/{id}", s.handleGetTask)
			r.Put("/tasks/{id}", s.handleUpdateTask)
			r.Delete("/tasks/{id}", s.handleDeleteTask)
		})
	}
	if s.prefix == "" {
		api(r)
	} else {
		r.Route(s.prefix, api)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

// URL returns the API base URL, prefix included.
func (s *Server) URL() string {
	return s.srv.URL + s.prefix
}

// Client returns an HTTP client configured for the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Requests returns how many requests the server has received.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// FailNext makes the next request answer with status and a raw body of the
// given content type, regardless of the route. Calls queue up.
func (s *Server) FailNext(status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, contentType: contentType, body: body})
}

type failure struct {
	status      int
	contentType string
	body        string
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		if f.contentType != "" {
			w.Header().Set("Content-Type", f.contentType)
		}
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	})
}

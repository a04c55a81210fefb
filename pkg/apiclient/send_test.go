package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/taskclient/pkg/apiclient"
	"github.com/dmitrymomot/taskclient/pkg/apierror"
)

type task struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func newServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *apiclient.Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := apiclient.New(
		apiclient.WithBaseURL(srv.URL+"/api/v1"),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return srv, c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestSend_Success(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tasks/", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, `[{"id":1,"title":"Write report"},{"id":2,"title":"Call Bob"}]`)
	})

	got, err := apiclient.Send[[]task](context.Background(), c, "/tasks/?skip=0&limit=5")
	require.NoError(t, err)
	assert.Equal(t, []task{{1, "Write report"}, {2, "Call Bob"}}, got)
}

func TestSend_JSONBody(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Write report", in["title"])
		writeJSON(w, http.StatusCreated, `{"id":7,"title":"Write report"}`)
	})

	got, err := apiclient.Post[task](context.Background(), c, "/tasks/", map[string]string{"title": "Write report"})
	require.NoError(t, err)
	assert.Equal(t, task{7, "Write report"}, got)
}

func TestSend_HeaderMerge(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"), "defaults not overridden are kept")
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ann@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		writeJSON(w, http.StatusOK, `{"access_token":"t","token_type":"bearer"}`)
	})

	_, err := apiclient.Send[map[string]any](context.Background(), c, "/login/access-token",
		apiclient.WithMethod(http.MethodPost),
		apiclient.WithForm(url.Values{"username": {"ann@example.com"}, "password": {"secret"}}),
		apiclient.WithHeaders(map[string]string{"X-Extra": "yes"}),
	)
	require.NoError(t, err)
}

func TestSend_NoContent(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := apiclient.Send[map[string]any](context.Background(), c, "/tasks/1", apiclient.WithMethod(http.MethodDelete))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, apiclient.Delete(context.Background(), c, "/tasks/1"))
}

func TestSend_ErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
		wantKind    apierror.Kind
		wantDetails map[string]any
	}{
		{
			name:        "detail string",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"detail":"Task not found"}`,
			wantMessage: "Task not found",
			wantKind:    apierror.KindNotFound,
			wantDetails: map[string]any{"detail": "Task not found"},
		},
		{
			name:        "message field",
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body:        `{"message":"Email already registered"}`,
			wantMessage: "Email already registered",
			wantKind:    apierror.KindClient,
			wantDetails: map[string]any{"message": "Email already registered"},
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"detail":"Not authenticated"}`,
			wantMessage: "Not authenticated",
			wantKind:    apierror.KindUnauthorized,
			wantDetails: map[string]any{"detail": "Not authenticated"},
		},
		{
			name:        "malformed json falls back to status text",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"detail":`,
			wantMessage: "Internal Server Error",
			wantKind:    apierror.KindServer,
			wantDetails: map[string]any{},
		},
		{
			name:        "non json body is ignored",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        `<h1>Bad Gateway</h1>`,
			wantMessage: "Bad Gateway",
			wantKind:    apierror.KindServer,
			wantDetails: map[string]any{},
		},
		{
			name:        "problem json",
			status:      http.StatusConflict,
			contentType: "application/problem+json",
			body:        `{"detail":"Task already completed"}`,
			wantMessage: "Task already completed",
			wantKind:    apierror.KindClient,
			wantDetails: map[string]any{"detail": "Task already completed"},
		},
		{
			name:        "string detail on validation status",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"detail":"Due date is in the past"}`,
			wantMessage: "Due date is in the past",
			wantKind:    apierror.KindValidation,
			wantDetails: map[string]any{"detail": "Due date is in the past"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := apiclient.Send[task](context.Background(), c, "/tasks/1")
			require.Error(t, err)

			apiErr, ok := apierror.As(err)
			require.True(t, ok, "expected APIError, got %T", err)
			assert.Equal(t, tt.wantMessage, apiErr.Message())
			assert.Equal(t, tt.status, apiErr.StatusCode())
			assert.Equal(t, tt.wantKind, apierror.Classify(err))
			assert.Equal(t, tt.wantDetails, apiErr.Details())
		})
	}
}

func TestSend_ValidationError(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"detail":[
			{"loc":["body","title"],"msg":"field required","type":"missing"},
			{"loc":["body","due_date"],"msg":"invalid datetime format","type":"datetime_parsing"}
		]}`)
	})

	_, err := apiclient.Post[task](context.Background(), c, "/tasks/", map[string]any{"description": "x"})
	require.Error(t, err)

	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.StatusCode())
	assert.True(t, apierror.IsValidationError(err))
	assert.Equal(t, "body.title: field required, body.due_date: invalid datetime format", apiErr.Message())

	msg := apiErr.Message()
	assert.Less(t, strings.Index(msg, "body.title"), strings.Index(msg, "body.due_date"), "records keep server order")

	detail, ok := apiErr.Details()["detail"].([]any)
	require.True(t, ok, "raw body is preserved")
	assert.Len(t, detail, 2)
	assert.Equal(t, map[string]string{
		"title":    "field required",
		"due_date": "invalid datetime format",
	}, apierror.FieldErrors(err))
}

func TestSend_EmptyViolationListKeepsStatusText(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"detail":[]}`)
	})

	_, err := apiclient.Send[task](context.Background(), c, "/tasks/")
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Unprocessable Entity", apiErr.Message())
}

func TestSend_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := apiclient.New(
		apiclient.WithBaseURL(base),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	_, err := apiclient.Send[task](context.Background(), c, "/tasks/")
	require.Error(t, err)

	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode())
	assert.Equal(t, apierror.NetworkMessage, apiErr.Message())
	assert.True(t, apierror.IsNetworkError(err))
	assert.False(t, apierror.IsServerError(err))
	assert.NotNil(t, errors.Unwrap(err), "transport cause is kept")
}

func TestSend_TimeoutIsNetworkError(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := apiclient.New(
		apiclient.WithBaseURL(srv.URL),
		apiclient.WithTimeout(50*time.Millisecond),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	_, err := apiclient.Send[task](context.Background(), c, "/slow")
	assert.True(t, apierror.IsNetworkError(err))
}

func TestSend_CallerCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := apiclient.New(
		apiclient.WithBaseURL(srv.URL),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := apiclient.Send[task](ctx, c, "/slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, apierror.KindUnclassified, apierror.Classify(err))
}

func TestSend_MalformedSuccessBody(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id": 1, "title": `)
	})

	_, err := apiclient.Send[task](context.Background(), c, "/tasks/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrDecodeResponse)
	_, isAPIErr := apierror.As(err)
	assert.False(t, isAPIErr, "decode failures stay unclassified")
	assert.Equal(t, apierror.KindUnclassified, apierror.Classify(err))
}

func TestSend_EncodeError(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := apiclient.Post[task](context.Background(), c, "/tasks/", map[string]any{"bad": make(chan int)})
	assert.ErrorIs(t, err, apiclient.ErrEncodeRequest)
	assert.Zero(t, hits.Load(), "nothing is sent")
}

func TestSend_SessionCookie(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/login/access-token":
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "abc", Path: "/"})
			writeJSON(w, http.StatusOK, `{}`)
		default:
			cookie, err := r.Cookie("access_token")
			if err != nil || cookie.Value != "abc" {
				writeJSON(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
				return
			}
			writeJSON(w, http.StatusOK, `[]`)
		}
	})

	_, err := apiclient.Get[[]task](context.Background(), c, "/tasks/")
	require.True(t, apierror.IsUnauthorized(err))

	_, err = apiclient.Send[map[string]any](context.Background(), c, "/login/access-token", apiclient.WithMethod(http.MethodPost))
	require.NoError(t, err)
	require.Len(t, c.Cookies(), 1)

	_, err = apiclient.Get[[]task](context.Background(), c, "/tasks/")
	require.NoError(t, err)
}

func TestSend_CustomClientGetsJar(t *testing.T) {
	t.Parallel()

	hc := &http.Client{}
	c := apiclient.New(apiclient.WithHTTPClient(hc))
	assert.Nil(t, hc.Jar, "caller's client is not mutated")
	assert.Empty(t, c.Cookies())
}

func TestSend_RateLimiter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}))
	t.Cleanup(srv.Close)

	c := apiclient.New(
		apiclient.WithBaseURL(srv.URL),
		apiclient.WithRateLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	_, err := apiclient.Send[map[string]any](context.Background(), c, "/first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = apiclient.Send[map[string]any](ctx, c, "/second")
	require.Error(t, err, "second call cannot get a token before the deadline")
	assert.False(t, apierror.IsNetworkError(err))
}

func TestSendAsync(t *testing.T) {
	t.Parallel()

	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":3,"title":"Async"}`)
	})

	f := apiclient.SendAsync[task](context.Background(), c, "/tasks/3")
	got, err := f.AwaitWithTimeout(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, task{3, "Async"}, got)
	assert.True(t, f.IsComplete())

	<-f.Done()
	again, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSendAsync_AwaitTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	t.Cleanup(srv.Close)

	c := apiclient.New(
		apiclient.WithBaseURL(srv.URL),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	f := apiclient.SendAsync[map[string]any](context.Background(), c, "/slow")
	_, err := f.AwaitWithTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, err, apiclient.ErrAwaitTimeout)
	assert.False(t, f.IsComplete())

	close(release)
	_, err = f.Await()
	assert.NoError(t, err)
}

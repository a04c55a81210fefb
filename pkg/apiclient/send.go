package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskclient/pkg/apierror"
	"github.com/dmitrymomot/taskclient/pkg/logger"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// Send performs one call and decodes the JSON response into T.
//
// Non-2xx responses fail with an *apierror.APIError carrying the server's
// message, the status, and the decoded error body. A call that never gets a
// response fails with a status-0 APIError, unless the caller's context ended
// first, in which case the context error is returned. A 204 response yields
// the zero T without reading the body. A success body that is not valid JSON
// for T fails with ErrDecodeResponse, deliberately not an APIError.
func Send[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	var zero T

	ctx = c.withRequestID(ctx)
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.do(ctx, callCtx, path, opts)
	if err != nil {
		return zero, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return zero, nil
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to decode API response",
			logger.Path(path),
			logger.StatusCode(resp.StatusCode),
			logger.Error(err),
		)
		return zero, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}
	return out, nil
}

// Get is Send with the GET method.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	return Send[T](ctx, c, path, append([]RequestOption{WithMethod(http.MethodGet)}, opts...)...)
}

// Post is Send with the POST method and body encoded as JSON.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	return Send[T](ctx, c, path, append([]RequestOption{WithMethod(http.MethodPost), WithJSON(body)}, opts...)...)
}

// Put is Send with the PUT method and body encoded as JSON.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	return Send[T](ctx, c, path, append([]RequestOption{WithMethod(http.MethodPut), WithJSON(body)}, opts...)...)
}

// Delete is Send with the DELETE method, discarding any response body.
func Delete(ctx context.Context, c *Client, path string, opts ...RequestOption) error {
	_, err := Send[json.RawMessage](ctx, c, path, append([]RequestOption{WithMethod(http.MethodDelete)}, opts...)...)
	return err
}

func (c *Client) withRequestID(ctx context.Context) context.Context {
	if logger.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return logger.WithRequestID(ctx, uuid.NewString())
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// do runs the exchange under callCtx and returns the response only for 2xx
// statuses. ctx is the caller's context, used to tell a caller cancellation
// apart from a transport failure.
func (c *Client) do(ctx, callCtx context.Context, path string, opts []RequestOption) (*http.Response, error) {
	rc := newRequestConfig(c.userAgent)
	for _, opt := range opts {
		opt(rc)
	}
	if rc.encodeErr != nil {
		return nil, rc.encodeErr
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(callCtx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if rc.body != nil {
		body = bytes.NewReader(rc.body)
	}
	req, err := http.NewRequestWithContext(callCtx, rc.method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Header = rc.header
	req.Header.Set("X-Request-ID", logger.RequestIDFromContext(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "API request failed without a response",
			logger.Method(rc.method),
			logger.Path(path),
			logger.Duration(elapsed),
			logger.Error(err),
		)
		return nil, apierror.Network(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "API request completed",
			logger.Method(rc.method),
			logger.Path(path),
			logger.StatusCode(resp.StatusCode),
			logger.Duration(elapsed),
		)
		return resp, nil
	}

	defer func() { _ = resp.Body.Close() }()
	apiErr := errorFromResponse(resp)
	c.logger.LogAttrs(ctx, slog.LevelWarn, "API request returned an error status",
		logger.Method(rc.method),
		logger.Path(path),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(elapsed),
		logger.Kind(apierror.Classify(apiErr).String()),
		logger.Error(apiErr),
	)
	return nil, apiErr
}

// errorFromResponse turns a non-2xx response into an APIError. An error body
// that is missing, not JSON, or malformed is treated as an empty object.
func errorFromResponse(resp *http.Response) *apierror.APIError {
	body := map[string]any{}
	if isJSON(resp.Header.Get("Content-Type")) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded != nil {
			body = decoded
		}
	}

	statusText := reasonPhrase(resp)

	message := statusText
	if s, ok := body["detail"].(string); ok && s != "" {
		message = s
	} else if s, ok := body["message"].(string); ok && s != "" {
		message = s
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		if vs, ok := apierror.ParseViolations(body["detail"]); ok && len(vs) > 0 {
			message = apierror.JoinViolations(vs)
		}
	}

	if message == "" {
		message = "API error: " + strconv.Itoa(resp.StatusCode)
	}

	return apierror.New(message, resp.StatusCode, body)
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == contentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

// reasonPhrase returns the status line text, e.g. "Not Found".
func reasonPhrase(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)); ok {
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return http.StatusText(resp.StatusCode)
}

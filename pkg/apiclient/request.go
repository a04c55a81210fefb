package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

type requestConfig struct {
	method    string
	header    http.Header
	body      []byte
	encodeErr error
}

func newRequestConfig(userAgent string) *requestConfig {
	h := make(http.Header)
	h.Set("Content-Type", contentTypeJSON)
	h.Set("Accept", contentTypeJSON)
	h.Set("User-Agent", userAgent)
	return &requestConfig{
		method: http.MethodGet,
		header: h,
	}
}

// RequestOption configures a single call.
type RequestOption func(*requestConfig)

// WithMethod sets the HTTP method. The default is GET.
func WithMethod(method string) RequestOption {
	return func(r *requestConfig) {
		if method != "" {
			r.method = method
		}
	}
}

// WithHeader sets one header, replacing a default of the same name.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		if key != "" {
			r.header.Set(key, value)
		}
	}
}

// WithHeaders merges headers over the defaults.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *requestConfig) {
		for k, v := range headers {
			if k != "" {
				r.header.Set(k, v)
			}
		}
	}
}

// WithBody sends raw bytes. The content type stays whatever the headers say.
func WithBody(body []byte) RequestOption {
	return func(r *requestConfig) {
		r.body = body
	}
}

// WithJSON sends v encoded as JSON.
func WithJSON(v any) RequestOption {
	return func(r *requestConfig) {
		b, err := json.Marshal(v)
		if err != nil {
			r.encodeErr = fmt.Errorf("%w: %w", ErrEncodeRequest, err)
			return
		}
		r.body = b
		r.header.Set("Content-Type", contentTypeJSON)
	}
}

// WithForm sends values URL-encoded, as login endpoints expect.
func WithForm(values url.Values) RequestOption {
	return func(r *requestConfig) {
		r.body = []byte(values.Encode())
		r.header.Set("Content-Type", contentTypeForm)
	}
}

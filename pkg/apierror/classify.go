package apierror

import (
	"errors"
	"net/http"
)

// Kind is the closed failure taxonomy callers branch on.
type Kind string

const (
	KindNone         Kind = "none"
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	// KindClient covers every other received non-success status.
	KindClient Kind = "client"
	// KindUnclassified is any failure that is not an APIError.
	KindUnclassified Kind = "unclassified"
)

func (k Kind) String() string {
	return string(k)
}

// As reports whether err is or wraps an *APIError and returns it.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

// Classify maps any error onto the taxonomy. A nil error is KindNone.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	apiErr, ok := As(err)
	if !ok {
		return KindUnclassified
	}

	code := apiErr.StatusCode()
	switch {
	case code == 0:
		return KindNetwork
	case code == http.StatusUnauthorized:
		return KindUnauthorized
	case code == http.StatusUnprocessableEntity:
		return KindValidation
	case code == http.StatusNotFound:
		return KindNotFound
	case code >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindClient
	}
}

// IsUnauthorized reports a 401 APIError.
func IsUnauthorized(err error) bool {
	return hasStatus(err, func(code int) bool { return code == http.StatusUnauthorized })
}

// IsValidationError reports a 422 APIError.
func IsValidationError(err error) bool {
	return hasStatus(err, func(code int) bool { return code == http.StatusUnprocessableEntity })
}

// IsNotFound reports a 404 APIError.
func IsNotFound(err error) bool {
	return hasStatus(err, func(code int) bool { return code == http.StatusNotFound })
}

// IsServerError reports an APIError with status 500 or above.
func IsServerError(err error) bool {
	return hasStatus(err, func(code int) bool { return code >= http.StatusInternalServerError })
}

// IsNetworkError reports an APIError for a call that never got a response.
func IsNetworkError(err error) bool {
	return hasStatus(err, func(code int) bool { return code == 0 })
}

// IsClientError reports an APIError outside every more specific kind.
func IsClientError(err error) bool {
	return Classify(err) == KindClient
}

func hasStatus(err error, match func(int) bool) bool {
	apiErr, ok := As(err)
	return ok && match(apiErr.StatusCode())
}

package apierror

import (
	"maps"
)

// NetworkMessage is the message of every APIError built by Network.
const NetworkMessage = "Network error: Unable to connect to the server. Please check your connection."

// APIError is the structured failure produced by the request gateway.
//
// A zero status code means no response was ever received. Any other code is
// the status of a received response outside the 2xx range. Values are
// immutable: fields are only reachable through accessors and Details returns
// a copy.
type APIError struct {
	message    string
	statusCode int
	details    map[string]any
	cause      error
}

// New creates an APIError for a received response.
// details is the decoded error body and may be nil.
func New(message string, statusCode int, details map[string]any) *APIError {
	return &APIError{
		message:    message,
		statusCode: statusCode,
		details:    maps.Clone(details),
	}
}

// Network creates the status-0 APIError for a call that never got a response.
// cause is kept for errors.Is/As and logging.
func Network(cause error) *APIError {
	return &APIError{
		message: NetworkMessage,
		cause:   cause,
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.message
}

// Unwrap returns the transport failure behind a network error.
func (e *APIError) Unwrap() error {
	return e.cause
}

func (e *APIError) Message() string {
	return e.message
}

func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Details returns a shallow copy of the raw error body, or nil.
func (e *APIError) Details() map[string]any {
	return maps.Clone(e.details)
}

// Detail returns the body's "detail" field, or nil when absent.
func (e *APIError) Detail() any {
	if e.details == nil {
		return nil
	}
	return e.details["detail"]
}

package apiclient

import "errors"

// Failures outside the HTTP exchange itself. None of them is an
// *apierror.APIError, so they classify as unclassified.
var (
	ErrInvalidRequest = errors.New("apiclient: invalid request")
	ErrEncodeRequest  = errors.New("apiclient: failed to encode request body")
	ErrDecodeResponse = errors.New("apiclient: failed to decode response body")
	ErrAwaitTimeout   = errors.New("apiclient: timed out waiting for response")
)

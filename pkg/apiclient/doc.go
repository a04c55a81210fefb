// Package apiclient is the request gateway of the task client: the single
// chokepoint through which every call to the task API flows.
//
// A Client appends paths to a fixed base URL, sends JSON by default, carries
// the session cookie on every call through its cookie jar, and turns every
// non-success outcome into an *apierror.APIError so callers never parse raw
// responses:
//
//	c := apiclient.New(apiclient.WithBaseURL("http://localhost:8000/api/v1"))
//
//	tasks, err := apiclient.Get[[]tasks.Task](ctx, c, "/tasks/?skip=0&limit=5")
//	switch {
//	case apierror.IsUnauthorized(err):
//	    // redirect to login
//	case err != nil:
//	    // notify
//	}
//
// Request options adjust one call: WithMethod, WithHeader, WithJSON, WithForm
// (URL-encoded, for the login endpoint), WithBody. Caller headers are merged
// over the defaults rather than replacing them.
//
// # Failure modes
//
//   - non-2xx response: *apierror.APIError with the status and decoded body.
//     For 422 with a list of {loc, msg} records the message joins every
//     record as "body.title: field required".
//   - no response at all: *apierror.APIError with status 0.
//   - caller context cancelled: the context error, unchanged.
//   - 2xx body that is not valid JSON: ErrDecodeResponse, not an APIError.
//
// The gateway never retries. SendAsync wraps Send in a Future for callers
// that want to start several calls and collect them later.
package apiclient

// Package apitest runs an in-memory task backend over HTTP for tests. It
// speaks the same wire format as the real service: cookie sessions set by
// the login form endpoint, JSON bodies, {"detail": ...} error bodies and
// field-level validation details on 422.
//
//	srv := apitest.NewServer(apitest.WithUser("ann@example.com", "secret", "Ann"))
//	defer srv.Close()
//	client := apiclient.New(apiclient.WithBaseURL(srv.URL()))
package apitest

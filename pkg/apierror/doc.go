// Package apierror defines the structured failure returned by the request
// gateway and the predicates callers use to branch on it.
//
// Classification is by status code only: 0 network, 401 unauthorized,
// 422 validation, 404 not found, 500 and above server, anything else client.
// Every predicate accepts any error, including nil and errors that merely wrap
// an *APIError, and is false for failures that are not APIErrors at all.
// Callers therefore always need a final branch for unclassified failures:
//
//	switch {
//	case apierror.IsUnauthorized(err):
//	    // session expired, send the user to the login screen
//	case apierror.IsValidationError(err):
//	    fields := apierror.FieldErrors(err)
//	case err != nil:
//	    // generic failure
//	}
package apierror

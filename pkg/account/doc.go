// Package account implements login and signup against the task backend.
package account

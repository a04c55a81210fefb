// Package tasks provides typed access to the task endpoints: paged listing
// with status filters, creation, completion with an optional manager
// notification, and deletion.
package tasks

// Package toast implements the notification queue: the ordered, time-bounded
// list of transient messages a UI session shows to its user.
//
// A Queue is created once per session and injected wherever feedback is
// produced. Push appends a message and returns its id; the Success, Error,
// Warning and Info helpers fix the kind:
//
//	q := toast.New()
//	defer q.Close()
//
//	q.Success("Task created successfully!")              // gone after 5s
//	id := q.Error("Please fix the validation errors", toast.Persistent())
//	q.Dismiss(id)
//
// Each timed message has its own cancellable timer. Dismiss cancels it, and
// is idempotent so a manual dismiss racing an expiry is harmless. Close
// cancels every timer and is the teardown hook for the session.
//
// Renderers either poll Messages or call Subscribe to receive a fresh
// snapshot after every change. The queue never reorders: insertion order is
// display order, and whether the newest is drawn first is up to the renderer.
package toast

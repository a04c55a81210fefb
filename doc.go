// Package taskclient is the client side of a task-management application.
//
// It talks to the task API through a single request gateway that owns the
// session cookie and turns every failure into a classified error, keeps a
// queue of transient notifications for the user, and applies one policy for
// reporting failures (an expired session also sends the user to the login
// screen). Session ties these together:
//
//	cfg := config.MustLoad()
//	s, err := taskclient.NewSession(cfg, navigator)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.Account.Login(ctx, email, password); err != nil {
//	    s.Feedback.Report(ctx, err, "Login failed")
//	    return err
//	}
//	list, err := s.Tasks.List(ctx, tasks.ListOptions{Filter: tasks.FilterOverdue})
//
// The building blocks live under pkg/: apiclient (gateway), apierror
// (classification), toast (notification queue), feedback (reporting policy),
// tasks and account (typed endpoints), config and logger (ambient setup) and
// apitest (an in-memory backend for tests).
package taskclient

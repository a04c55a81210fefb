// Package feedback applies the client's error-handling policy: every failure
// surfaced to a user produces exactly one notification, and an expired
// session additionally sends the user to the login screen after a short
// delay, long enough to read why.
//
//	tasks, err := svc.List(ctx, opts)
//	if err != nil {
//	    out := reporter.Report(ctx, err, "Failed to load tasks")
//	    form.SetErrors(out.FieldErrors)
//	    return
//	}
//	reporter.Succeed("Task created successfully!")
package feedback

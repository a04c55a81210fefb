package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/taskclient/pkg/tasks"
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTasksListCmd(a),
		newTasksCreateCmd(a),
		newTasksCompleteCmd(a),
		newTasksDeleteCmd(a),
	)
	return cmd
}

func newTasksListCmd(a *app) *cobra.Command {
	var (
		filter string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := tasks.ParseFilter(filter)
			if err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("page must be 1 or greater")
			}

			ctx := cmd.Context()
			if err := a.login(ctx); err != nil {
				return err
			}

			list, err := a.session.Tasks.List(ctx, tasks.ListOptions{Filter: f, Page: page - 1})
			if err != nil {
				return a.fail(ctx, err, "Failed to load tasks")
			}
			if err := render(a.stdout, a.output, list); err != nil {
				return err
			}
			if a.output == formatTable && tasks.HasNextPage(len(list)) {
				fmt.Fprintf(a.stderr, "More tasks: --page %d\n", page+1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", string(tasks.FilterAll), "all, new, pending, overdue or completed")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func newTasksCreateCmd(a *app) *cobra.Command {
	var title, description, due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dueDate, err := tasks.ParseTimestamp(due)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.login(ctx); err != nil {
				return err
			}

			task, err := a.session.Tasks.Create(ctx, tasks.NewTask{
				Title:       title,
				Description: description,
				DueDate:     dueDate,
			})
			if err != nil {
				return a.fail(ctx, err, "Failed to create task")
			}
			a.session.Feedback.Succeed("Task created successfully!")
			return render(a.stdout, a.output, task)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", "Due date, e.g. 2024-05-10T17:00")
	return cmd
}

func newTasksCompleteCmd(a *app) *cobra.Command {
	var managerEmail string

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task completed, optionally notifying a manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.login(ctx); err != nil {
				return err
			}

			task, err := a.session.Tasks.Complete(ctx, id, managerEmail)
			if err != nil {
				return a.fail(ctx, err, "Failed to complete task")
			}
			a.session.Feedback.Succeed("Task completed successfully!")
			return render(a.stdout, a.output, task)
		},
	}

	cmd.Flags().StringVar(&managerEmail, "manager-email", "", "Notify this address of the completion")
	return cmd
}

func newTasksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.login(ctx); err != nil {
				return err
			}

			if err := a.session.Tasks.Delete(ctx, id); err != nil {
				return a.fail(ctx, err, "Failed to delete task")
			}
			a.session.Feedback.Succeed("Task deleted successfully")
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

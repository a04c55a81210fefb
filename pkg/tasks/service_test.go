package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskclient/pkg/apiclient"
	"github.com/dmitrymomot/taskclient/pkg/apierror"
	"github.com/dmitrymomot/taskclient/pkg/apitest"
	"github.com/dmitrymomot/taskclient/pkg/tasks"
)

const email = "ann@example.com"

func setup(t *testing.T, opts ...apitest.Option) (*tasks.Service, *apitest.Server) {
	t.Helper()

	opts = append([]apitest.Option{apitest.WithUser(email, "secret", "Ann")}, opts...)
	srv := apitest.NewServer(opts...)
	t.Cleanup(srv.Close)

	client := apiclient.New(
		apiclient.WithBaseURL(srv.URL()),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	// Log in through the form endpoint so the jar holds the session cookie.
	_, err := apiclient.Send[struct{}](context.Background(), client, "/login/access-token",
		apiclient.WithMethod("POST"),
		apiclient.WithForm(map[string][]string{"username": {email}, "password": {"secret"}}),
	)
	require.NoError(t, err)

	return tasks.NewService(client), srv
}

func TestServiceList(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	svc, srv := setup(t, apitest.WithClock(clock))
	for i := 0; i < 7; i++ {
		task := tasks.Task{Title: "task", CreatedAt: tasks.Timestamp{Time: clock.Now().Add(-48 * time.Hour)}}
		if i == 6 {
			task.DueDate = tasks.Timestamp{Time: clock.Now().Add(-time.Hour)}
		}
		srv.SeedTask(email, task)
	}
	ctx := context.Background()

	first, err := svc.List(ctx, tasks.ListOptions{Filter: tasks.FilterAll})
	require.NoError(t, err)
	assert.Len(t, first, tasks.PageSize)
	assert.True(t, tasks.HasNextPage(len(first)))

	second, err := svc.List(ctx, tasks.ListOptions{Page: 1})
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.False(t, tasks.HasNextPage(len(second)))
	assert.Equal(t, int64(6), second[0].ID)

	overdue, err := svc.List(ctx, tasks.ListOptions{Filter: tasks.FilterOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, int64(7), overdue[0].ID)

	none, err := svc.List(ctx, tasks.ListOptions{Filter: tasks.FilterCompleted})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.List(ctx, tasks.ListOptions{Page: -1})
	assert.ErrorIs(t, err, tasks.ErrInvalidPage)

	_, err = svc.List(ctx, tasks.ListOptions{Filter: "archived"})
	assert.ErrorIs(t, err, tasks.ErrUnknownFilter)
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("with due date", func(t *testing.T) {
		t.Parallel()
		svc, srv := setup(t)

		due, err := tasks.ParseTimestamp("2030-01-02T09:30")
		require.NoError(t, err)
		created, err := svc.Create(context.Background(), tasks.NewTask{
			Title:       "Write report",
			Description: "Q2 numbers",
			DueDate:     due,
		})
		require.NoError(t, err)

		assert.Positive(t, created.ID)
		assert.Equal(t, tasks.StatusPending, created.Status)
		assert.True(t, due.Equal(created.DueDate.Time))
		assert.Len(t, srv.Tasks(email), 1)
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		_, err := svc.Create(context.Background(), tasks.NewTask{Description: "no title"})
		require.Error(t, err)

		assert.True(t, apierror.IsValidationError(err))
		assert.Equal(t, "body.title: field required", err.Error())
		assert.Equal(t, map[string]string{"title": "field required"}, apierror.FieldErrors(err))
	})
}

func TestServiceCompleteAndDelete(t *testing.T) {
	t.Parallel()

	svc, srv := setup(t)
	task := srv.SeedTask(email, tasks.Task{Title: "ship"})
	ctx := context.Background()

	done, err := svc.Complete(ctx, task.ID, "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusCompleted, done.Status)
	assert.Equal(t, []apitest.Notification{{TaskID: task.ID, Email: "boss@example.com"}}, srv.Notifications())

	require.NoError(t, svc.Delete(ctx, task.ID))
	assert.Empty(t, srv.Tasks(email))

	err = svc.Delete(ctx, task.ID)
	assert.True(t, apierror.IsNotFound(err))
	assert.Equal(t, "Task not found", err.Error())

	_, err = svc.Complete(ctx, 0, "")
	assert.ErrorIs(t, err, tasks.ErrInvalidTaskID)
	assert.ErrorIs(t, svc.Delete(ctx, -1), tasks.ErrInvalidTaskID)
}

func TestServiceUnauthorized(t *testing.T) {
	t.Parallel()

	svc, srv := setup(t)
	srv.ExpireSessions()

	_, err := svc.List(context.Background(), tasks.ListOptions{})
	assert.True(t, apierror.IsUnauthorized(err))
}

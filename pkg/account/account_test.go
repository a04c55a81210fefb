package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskclient/pkg/account"
	"github.com/dmitrymomot/taskclient/pkg/apiclient"
	"github.com/dmitrymomot/taskclient/pkg/apierror"
	"github.com/dmitrymomot/taskclient/pkg/apitest"
	"github.com/dmitrymomot/taskclient/pkg/tasks"
)

func setup(t *testing.T) (*account.Service, *apiclient.Client) {
	t.Helper()
	srv := apitest.NewServer(apitest.WithUser("ann@example.com", "secret", "Ann"))
	t.Cleanup(srv.Close)

	client := apiclient.New(
		apiclient.WithBaseURL(srv.URL()),
		apiclient.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return account.NewService(client), client
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success stores session", func(t *testing.T) {
		t.Parallel()
		svc, client := setup(t)
		ctx := context.Background()

		_, err := tasks.NewService(client).List(ctx, tasks.ListOptions{})
		require.True(t, apierror.IsUnauthorized(err))
		assert.False(t, svc.LoggedIn())

		require.NoError(t, svc.Login(ctx, " ann@example.com ", "secret"))
		assert.True(t, svc.LoggedIn())

		_, err = tasks.NewService(client).List(ctx, tasks.ListOptions{})
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		err := svc.Login(context.Background(), "ann@example.com", "nope")
		require.Error(t, err)

		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, 400, apiErr.StatusCode())
		assert.Equal(t, "Incorrect email or password", apiErr.Message())
		assert.False(t, svc.LoggedIn())
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		assert.ErrorIs(t, svc.Login(context.Background(), "", "secret"), account.ErrMissingCredentials)
		assert.ErrorIs(t, svc.Login(context.Background(), "ann@example.com", ""), account.ErrMissingCredentials)
	})
}

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("creates user and allows login", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)
		ctx := context.Background()

		u, err := svc.Signup(ctx, account.SignupRequest{
			Email:    "bob@example.com",
			Password: "hunter2",
			FullName: "Bob",
		})
		require.NoError(t, err)
		assert.Positive(t, u.ID)
		assert.Equal(t, "bob@example.com", u.Email)
		assert.Equal(t, "Bob", u.FullName)
		assert.True(t, u.IsActive)
		assert.False(t, svc.LoggedIn())

		assert.NoError(t, svc.Login(ctx, "bob@example.com", "hunter2"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		_, err := svc.Signup(context.Background(), account.SignupRequest{Email: "ann@example.com", Password: "x"})
		require.Error(t, err)
		assert.Equal(t, apierror.KindClient, apierror.Classify(err))
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		svc, _ := setup(t)

		_, err := svc.Signup(context.Background(), account.SignupRequest{Email: "not-an-email", Password: "x"})
		require.True(t, apierror.IsValidationError(err))
		assert.Equal(t, "body.email: value is not a valid email address", err.Error())
	})
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/taskclient/pkg/account"
)

func newSignupCmd(a *app) *cobra.Command {
	var fullName string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := a.session.Account.Signup(ctx, account.SignupRequest{
				Email:    a.email,
				Password: a.password,
				FullName: fullName,
			})
			if err != nil {
				return a.fail(ctx, err, "Signup failed")
			}
			a.session.Feedback.Succeed("Account created. You can now log in.")
			return render(a.stdout, a.output, user)
		},
	}

	cmd.Flags().StringVar(&fullName, "name", "", "Full name")
	return cmd
}

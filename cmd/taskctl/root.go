package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/taskclient"
	"github.com/dmitrymomot/taskclient/pkg/config"
	"github.com/dmitrymomot/taskclient/pkg/logger"
	"github.com/dmitrymomot/taskclient/pkg/toast"
)

var (
	// errReported marks a failure already shown through the notification queue.
	errReported = errors.New("reported")
	errConfig   = errors.New("configuration error")
)

// app carries flags and the session shared by all subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	envFile  string
	apiURL   string
	email    string
	password string
	output   string
	verbose  bool

	session *taskclient.Session
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskctl",
		Short: "taskctl - command line client for the task API",
		Long: `taskctl manages tasks on a task API server.

Configuration comes from the environment (TASKS_API_URL, TASKS_EMAIL,
TASKS_PASSWORD, ...) and an optional .env file. Flags win over both.

Examples:
  # Create an account
  taskctl signup --email ann@example.com --password secret --name Ann

  # List overdue tasks as YAML
  taskctl tasks list --filter overdue -o yaml

  # Complete a task and notify a manager
  taskctl tasks complete 7 --manager-email boss@example.com`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "Load configuration from this .env file")
	flags.StringVar(&a.apiURL, "api-url", "", "API base URL (overrides TASKS_API_URL)")
	flags.StringVar(&a.email, "email", "", "Account e-mail (overrides TASKS_EMAIL)")
	flags.StringVar(&a.password, "password", "", "Account password (overrides TASKS_PASSWORD)")
	flags.StringVarP(&a.output, "output", "o", formatTable, "Output format: table, json or yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(newSignupCmd(a), newTasksCmd(a))
	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	if !validFormat(a.output) {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return errors.Join(errConfig, err)
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.email == "" {
		a.email = cfg.Email
	}
	if a.password == "" {
		a.password = cfg.Password
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	log := logger.New(
		logger.WithEnvironment(cfg.Env, "taskctl"),
		logger.WithLevel(level),
		logger.WithTextFormatter(),
		logger.WithOutput(a.stderr),
		logger.WithContextExtractors(logger.RequestIDExtractor()),
	)

	// A one-shot command has no screen to navigate to.
	s, err := taskclient.NewSession(cfg, nil, taskclient.WithLogger(log))
	if err != nil {
		return errors.Join(errConfig, err)
	}
	a.session = s
	return nil
}

// teardown prints the notifications raised during the command and closes
// the session. Safe to call more than once.
func (a *app) teardown() error {
	if a.session == nil {
		return nil
	}
	for _, m := range a.session.Toasts.Messages() {
		fmt.Fprintf(a.stderr, "[%s] %s\n", m.Kind, m.Text)
	}
	err := a.session.Close()
	a.session = nil
	return err
}

// fail reports err through the session so the user sees exactly one message.
func (a *app) fail(ctx context.Context, err error, fallback string) error {
	out := a.session.Feedback.Report(ctx, err, fallback)
	for field, msg := range out.FieldErrors {
		fmt.Fprintf(a.stderr, "  %s: %s\n", field, msg)
	}
	return errReported
}

// login authenticates the session with the configured credentials.
func (a *app) login(ctx context.Context) error {
	if a.email == "" || a.password == "" {
		a.session.Toasts.Push("Credentials required: pass --email and --password or set TASKS_EMAIL and TASKS_PASSWORD", toast.KindError)
		return errReported
	}
	if err := a.session.Account.Login(ctx, a.email, a.password); err != nil {
		return a.fail(ctx, err, "Login failed. Please check your credentials.")
	}
	return nil
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskclient/pkg/config"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 5*time.Second, cfg.ToastLifetime)
	assert.Equal(t, 1500*time.Millisecond, cfg.RedirectDelay)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, "development", cfg.Env)
	assert.Zero(t, cfg.RateLimit)
	assert.Empty(t, cfg.Email)
	assert.Empty(t, cfg.LogLevel)
	assert.Empty(t, cfg.LogFormat)
}

func TestLoadFrom_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom(map[string]string{
		"TASKS_API_URL":        "https://tasks.example.com/api/v1",
		"TASKS_API_TIMEOUT":    "5s",
		"TASKS_RATE_LIMIT":     "2.5",
		"TASKS_TOAST_LIFETIME": "0s",
		"TASKS_EMAIL":          "ann@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Zero(t, cfg.ToastLifetime)
	assert.Equal(t, "ann@example.com", cfg.Email)
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		environ map[string]string
		wantErr error
	}{
		{"bad duration", map[string]string{"TASKS_API_TIMEOUT": "soon"}, config.ErrParsingConfig},
		{"ftp scheme", map[string]string{"TASKS_API_URL": "ftp://example.com"}, config.ErrInvalidConfig},
		{"missing host", map[string]string{"TASKS_API_URL": "http://"}, config.ErrInvalidConfig},
		{"negative rate", map[string]string{"TASKS_RATE_LIMIT": "-1"}, config.ErrInvalidConfig},
		{"negative delay", map[string]string{"TASKS_REDIRECT_DELAY": "-1s"}, config.ErrInvalidConfig},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}, config.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadFrom(tt.environ)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TASKS_LOGIN_PATH=/signin\nLOG_LEVEL=debug\n"), 0o600))

	t.Setenv("LOG_LEVEL", "warn")
	// godotenv.Load sets variables for the process; make sure they are removed afterwards.
	t.Setenv("TASKS_LOGIN_PATH", "")
	require.NoError(t, os.Unsetenv("TASKS_LOGIN_PATH"))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/signin", cfg.LoginPath)
	assert.Equal(t, "warn", cfg.LogLevel, "process environment wins over the file")
}

func TestLoad_MissingNamedFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() {
		config.MustLoad(filepath.Join(t.TempDir(), "absent.env"))
	})
}

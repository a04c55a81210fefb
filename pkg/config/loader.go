package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything a task client session needs at construction time.
type Config struct {
	APIURL        string        `env:"TASKS_API_URL" envDefault:"http://localhost:8000/api/v1"`
	APITimeout    time.Duration `env:"TASKS_API_TIMEOUT" envDefault:"30s"`
	RateLimit     float64       `env:"TASKS_RATE_LIMIT" envDefault:"0"`
	ToastLifetime time.Duration `env:"TASKS_TOAST_LIFETIME" envDefault:"5s"`
	RedirectDelay time.Duration `env:"TASKS_REDIRECT_DELAY" envDefault:"1500ms"`
	LoginPath     string        `env:"TASKS_LOGIN_PATH" envDefault:"/login"`

	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"` // empty: per-environment default
	LogFormat string `env:"LOG_FORMAT"`

	Email    string `env:"TASKS_EMAIL"`
	Password string `env:"TASKS_PASSWORD"`
}

// Load reads the given .env files (or ./.env when none are given) and then
// parses the process environment. Real environment variables win over values
// from files. A missing default .env is not an error; a missing named file is.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom parses an explicit environment instead of the process one.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, cfg.Validate()
}

// MustLoad works like Load but panics on failure.
func MustLoad(files ...string) Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
	return cfg
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("%w: TASKS_API_URL: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: TASKS_API_URL: only http and https schemes are supported", ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: TASKS_API_URL: host is required", ErrInvalidConfig)
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("%w: TASKS_API_TIMEOUT must not be negative", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: TASKS_RATE_LIMIT must not be negative", ErrInvalidConfig)
	}
	if c.RedirectDelay < 0 {
		return fmt.Errorf("%w: TASKS_REDIRECT_DELAY must not be negative", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be json or text", ErrInvalidConfig)
	}
	return nil
}

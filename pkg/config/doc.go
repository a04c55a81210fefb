// Package config loads the task client configuration from the environment.
//
// Values come from struct tags parsed by github.com/caarlos0/env/v11. Load
// first reads .env files with github.com/joho/godotenv; variables already set
// in the process are never overwritten by a file.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	session, err := taskclient.NewSession(cfg, navigator)
//
// LoadFrom parses an explicit map and is what tests use.
package config

// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct tag parsing. Each config type is
// parsed once per process and cached by type:
//
//	var cfg app.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Use LoadEnv to load extra .env files (for example one passed on the command
// line) before the first Load, and ResetCache between tests.
package config

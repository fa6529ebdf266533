package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu      sync.Mutex
	loaded  = make(map[reflect.Type]any)
	dotenv  sync.Once
	envFile = ".env"
)

// LoadEnv loads the given .env files into the process environment. Variables
// that are already set are not overridden. Unlike the implicit .env load done
// by Load, missing files are an error here.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into v using its env struct tags.
// The .env file in the working directory is loaded on first use, if present.
// Each config type is parsed once; later calls copy the cached value, even if
// the environment has changed since. Failed parses are not cached.
//
//	type ServerConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenv.Do(func() {
		// The file is optional.
		_ = godotenv.Load(envFile)
	})

	key := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := loaded[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics on failure. Meant for main packages.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// ResetCache forgets every loaded config so the next Load parses the
// environment again. Intended for tests.
func ResetCache() {
	mu.Lock()
	defer mu.Unlock()
	clear(loaded)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/clientip"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/config"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/environment"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/logger"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/redis"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/requestid"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
)

// Cache drivers accepted by TENANT_CACHE_DRIVER.
const (
	cacheMemory = "memory"
	cacheRedis  = "redis"
	cacheNone   = "none"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"tenantd"`
	LogLevel    string `env:"LOG_LEVEL"`

	PolicyFile     string        `env:"TENANT_POLICY_FILE"`
	CacheDriver    string        `env:"TENANT_CACHE_DRIVER" envDefault:"memory"`
	CacheTTL       time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	CacheSize      int64         `env:"TENANT_CACHE_SIZE" envDefault:"10000"`
	VerifyHeaderID bool          `env:"TENANT_VERIFY_HEADER_ID" envDefault:"false"`

	ClientIPHeaders []string `env:"CLIENT_IP_HEADERS" envSeparator:","`
	ContactLimit    bool     `env:"CONTACT_RATE_LIMIT_ENABLED" envDefault:"true"`
}

func loadAppConfig() (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func (c appConfig) environment() environment.Environment {
	return environment.Parse(c.Env)
}

func (c appConfig) logger() *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(c.environment(), c.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			tenant.LoggerExtractor(),
			tenant.SourceLoggerExtractor(),
		),
	}
	if c.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(c.LogLevel)))
	}
	return logger.New(opts...)
}

func (c appConfig) policy() (tenant.Policy, error) {
	if c.PolicyFile == "" {
		return tenant.DefaultPolicy(), nil
	}
	return tenant.LoadPolicy(c.PolicyFile)
}

// openCache builds the tenant cache selected by the driver. The returned
// client is non-nil only for the redis driver and is owned by the caller.
func (c appConfig) openCache(ctx context.Context, log *slog.Logger) (tenant.Cache, *goredis.Client, error) {
	switch c.CacheDriver {
	case cacheMemory, "":
		cache, err := tenant.NewInMemoryCache(c.CacheSize)
		return cache, nil, err
	case cacheNone:
		return tenant.NewNoOpCache(), nil, nil
	case cacheRedis:
		var rcfg redis.Config
		if err := config.Load(&rcfg); err != nil {
			return nil, nil, err
		}
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return nil, nil, err
		}
		cache := redis.NewTenantCache(client,
			redis.WithKeyPrefix(rcfg.KeyPrefix),
			redis.WithCacheLogger(log),
		)
		return cache, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown TENANT_CACHE_DRIVER %q, want memory, redis or none", c.CacheDriver)
	}
}

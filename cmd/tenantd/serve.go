package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Matteomic94/ElementMedica-sub009/internal/api"
	"github.com/Matteomic94/ElementMedica-sub009/migrations"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/config"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/httpserver"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/logger"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/pg"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/ratelimiter"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/redis"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenantstore"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	app, err := loadAppConfig()
	if err != nil {
		return err
	}
	log := app.logger()

	var (
		pgCfg   pg.Config
		httpCfg httpserver.Config
	)
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	policy, err := app.policy()
	if err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, pg.MigrateUp, log.With(logger.Component("migrate"))); err != nil {
			return err
		}
	}

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}

	cache, redisClient, err := app.openCache(ctx, log.With(logger.Component("tenant_cache")))
	if err != nil {
		return err
	}
	defer cache.Close()
	if redisClient != nil {
		defer redisClient.Close()
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(redisClient)})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := tenant.NewMetrics(reg)

	resolver := tenant.NewResolver(policy,
		tenant.WithResolverLogger(log.With(logger.Component("resolver"))),
		tenant.WithResolverMetrics(metrics),
	)

	var limiter *ratelimiter.Limiter
	if app.ContactLimit {
		var rlCfg ratelimiter.Config
		if err := config.Load(&rlCfg); err != nil {
			return err
		}
		store := ratelimiter.NewMemoryStore()
		defer store.Close()
		if limiter, err = ratelimiter.New(store, rlCfg); err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Deps{
		Store:          tenantstore.New(pool),
		Resolver:       resolver,
		Cache:          cache,
		CacheTTL:       app.CacheTTL,
		VerifyHeaderID: app.VerifyHeaderID,
		Logger:         log,
		Metrics:        metrics,
		Gatherer:       reg,
		Checks:         checks,
		Env:            app.environment(),

		ContactLimiter:  limiter,
		ClientIPHeaders: app.ClientIPHeaders,
	})

	log.InfoContext(ctx, "starting tenantd",
		"cache_driver", app.CacheDriver,
		"verify_header_id", app.VerifyHeaderID,
	)
	return httpserver.New(httpCfg, httpserver.WithLogger(log)).Run(ctx, router)
}

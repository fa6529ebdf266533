// Package pg connects to PostgreSQL through pgx/v5 and runs the goose schema
// migrations of the tenant store.
//
// Config is populated from PG_* environment variables. Connect retries until
// the database answers a ping; Healthcheck is meant for the /readyz probe.
// Migrate runs the embedded migrations (see the migrations package) with up,
// down or status.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, pg.MigrateUp, log); err != nil {
//		return err
//	}
//
// IsDuplicateKeyError and ConstraintName classify *pgconn.PgError values so the
// store can turn unique violations into ErrSlugTaken or ErrDomainTaken.
package pg

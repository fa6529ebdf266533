package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// Migrate commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate runs a goose command against migrations embedded in fsys.
// Goose output is routed to log. The pool is bridged to database/sql because
// goose does not speak pgx natively.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, cfg Config, command string, log *slog.Logger) error {
	switch command {
	case MigrateUp, MigrateDown, MigrateStatus:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMigrateCommand, command)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	table := cfg.MigrationsTable
	if table == "" {
		table = goose.DefaultTablename
	}
	store, err := database.NewStore(database.DialectPostgres, table)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	provider, err := goose.NewProvider("", stdlib.OpenDBFromPool(pool), fsys,
		goose.WithStore(store),
		goose.WithLogger(gooseLogger{log: log}),
	)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	defer func() {
		if err := provider.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration provider", slog.Any("error", err))
		}
	}()

	switch command {
	case MigrateUp:
		results, err := provider.Up(ctx)
		logResults(ctx, log, results)
		if err != nil {
			return errors.Join(ErrFailedToApplyMigrations, err)
		}
	case MigrateDown:
		result, err := provider.Down(ctx)
		if result != nil {
			logResults(ctx, log, []*goose.MigrationResult{result})
		}
		if err != nil {
			return errors.Join(ErrFailedToApplyMigrations, err)
		}
	case MigrateStatus:
		statuses, err := provider.Status(ctx)
		if err != nil {
			return errors.Join(ErrFailedToApplyMigrations, err)
		}
		for _, s := range statuses {
			log.InfoContext(ctx, "migration",
				slog.Int64("version", s.Source.Version),
				slog.String("path", s.Source.Path),
				slog.String("state", string(s.State)),
			)
		}
	}
	return nil
}

func logResults(ctx context.Context, log *slog.Logger, results []*goose.MigrationResult) {
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("direction", r.Direction),
			slog.Duration("duration", r.Duration),
		)
	}
}

// gooseLogger bridges goose's Printf-style logging to slog.
type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(fmt.Sprintf(format, v...))
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info(fmt.Sprintf(format, v...))
}

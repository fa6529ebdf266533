package main

import (
	"github.com/spf13/cobra"

	"github.com/Matteomic94/ElementMedica-sub009/migrations"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/config"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/pg"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or list the tenant schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{pg.MigrateUp, pg.MigrateDown, pg.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := pg.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			app, err := loadAppConfig()
			if err != nil {
				return err
			}
			var pgCfg pg.Config
			if err := config.Load(&pgCfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := pg.Connect(ctx, pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return pg.Migrate(ctx, pool, migrations.FS, pgCfg, command, app.logger())
		},
	}
}

// Package migrations embeds the goose SQL migrations of the tenant store.
package migrations

import "embed"

// FS holds the *.sql migrations, applied in version order by pg.Migrate.
//
//go:embed *.sql
var FS embed.FS

package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
// Used by cmd/migrate to apply them and by cmd/server to check the schema version.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS

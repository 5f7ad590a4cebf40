package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	persistence "github.com/goliatone/go-persistence-bun"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded schema migration tree.
func GetMigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return migrationsFS
	}
	return sub
}

// RegisterMigrations registers the embedded schema with a persistence
// client and applies any pending migrations.
func RegisterMigrations(ctx context.Context, client *persistence.Client) error {
	if client == nil {
		return fmt.Errorf("sqlstore: persistence client is required")
	}
	client.RegisterSQLMigrations(GetMigrationsFS())
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("sqlstore: apply migrations: %w", err)
	}
	return nil
}

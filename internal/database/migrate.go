package database

import (
	"context"
	"embed"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies embedded migrations that are not yet recorded in schema_migrations
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := migrationFiles()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, filename := range files {
		var exists bool
		if err := db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, filename,
		); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + filename)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		err = WithTx(ctx, db, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", filename, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1)`, filename,
			); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, filename)
	}

	return applied, nil
}

func migrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

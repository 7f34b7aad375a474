package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/vncsmyrnk/idolvote/internal/utils"
)

// MigrationsDir is relative to the repository root.
var MigrationsDir = filepath.Join("internal", "adapters", "repository", "postgres", "migrations")

// ApplyMigrations runs every *.up.sql file in dir in name order.
func ApplyMigrations(ctx context.Context, db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := execFile(ctx, db, filepath.Join(dir, name)); err != nil {
			return err
		}
		utils.Logger.WithField("migration", name).Info("Migration applied")
	}
	return nil
}

// ApplyMigration runs the single file in dir whose name ends with migrationName.sql.
func ApplyMigration(ctx context.Context, db *sql.DB, dir, migrationName string) error {
	name, err := migrationFileName(dir, migrationName)
	if err != nil {
		return err
	}
	if err := execFile(ctx, db, filepath.Join(dir, name)); err != nil {
		return err
	}
	utils.Logger.WithField("migration", name).Info("Migration applied")
	return nil
}

func execFile(ctx context.Context, db *sql.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

func migrationFileName(dir, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid migration name: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read migrations directory: %w", err)
	}
	for _, f := range entries {
		if f.IsDir() {
			continue
		}
		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file %q not found", migrationName)
}

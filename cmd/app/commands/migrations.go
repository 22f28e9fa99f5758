package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies the pending database migrations for one service.
// The auth and profile services own independent schemas that may share a
// database, so each service tracks its migrations in its own table.
// Returns nil if there are no migrations to apply.
func RunMigrations(logger *slog.Logger, driver, connectionString, service string) error {
	switch service {
	case "auth", "profile":
	default:
		return fmt.Errorf("unknown service: %s (valid options: auth, profile)", service)
	}

	dbType := "postgresql"
	if driver == "mysql" {
		dbType = "mysql"
	}

	logger.Info("running database migrations",
		slog.String("driver", driver),
		slog.String("service", service),
	)

	migrationsPath := fmt.Sprintf("file://migrations/%s/%s", service, dbType)

	m, err := migrate.New(migrationsPath, withMigrationsTable(connectionString, service))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// withMigrationsTable gives each service its own migration bookkeeping table
// so both schemas can live in the same database.
func withMigrationsTable(connectionString, service string) string {
	separator := "?"
	if strings.Contains(connectionString, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%sx-migrations-table=schema_migrations_%s", connectionString, separator, service)
}

package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationStatus reports the schema version after a migration command.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Changed bool
}

// MigrateUp applies every pending migration.
func MigrateUp(databaseURL string) (MigrationStatus, error) {
	return withMigrator(databaseURL, func(m *migrate.Migrate) (bool, error) {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return err == nil, err
	})
}

// MigrateDown rolls back steps migrations (at least one).
func MigrateDown(databaseURL string, steps int) (MigrationStatus, error) {
	if steps <= 0 {
		steps = 1
	}
	return withMigrator(databaseURL, func(m *migrate.Migrate) (bool, error) {
		err := m.Steps(-steps)
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return err == nil, err
	})
}

// MigrationVersion returns the current schema version without changing it.
func MigrationVersion(databaseURL string) (MigrationStatus, error) {
	return withMigrator(databaseURL, func(*migrate.Migrate) (bool, error) { return false, nil })
}

func withMigrator(databaseURL string, run func(*migrate.Migrate) (bool, error)) (MigrationStatus, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("open database connection: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("create pgx migrate driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("create migrate instance: %w", err)
	}

	changed, err := run(m)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, fmt.Errorf("get migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty, Changed: changed}, nil
}

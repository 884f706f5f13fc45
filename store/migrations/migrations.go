// Package migrations holds the embedded schema migrations for SQLite and
// Postgres and applies them with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/sqlite/*.sql files/postgres/*.sql
var migrationFiles embed.FS

// Driver names the schema flavour to apply.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

// MigrateUp runs all pending migrations. The migrate instance is not closed
// because that would close db, which the caller owns.
func MigrateUp(db *sql.DB, driver Driver) error {
	m, err := newMigrate(db, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Status reports the applied schema version and the latest one embedded in
// the binary.
func Status(db *sql.DB, driver Driver) (current, latest uint, err error) {
	m, err := newMigrate(db, driver)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, 0, fmt.Errorf("failed to get database version: %w", err)
	}
	if dirty {
		return current, 0, fmt.Errorf("database is in dirty state at version %d (migration failed previously)", current)
	}

	src, err := iofs.New(migrationFiles, dir(driver))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read migration files: %w", err)
	}
	defer src.Close()

	latest, err = latestVersion(src)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to determine latest version: %w", err)
	}
	return current, latest, nil
}

func dir(driver Driver) string {
	return "files/" + string(driver)
}

func newMigrate(db *sql.DB, driver Driver) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, dir(driver))
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	var dbDriver database.Driver
	switch driver {
	case SQLite:
		dbDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case Postgres:
		dbDriver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	default:
		err = fmt.Errorf("unknown driver %q", driver)
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(driver), dbDriver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// latestVersion walks the source to its last migration.
func latestVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(version)
		if err != nil {
			break
		}
		version = next
	}
	return version, nil
}

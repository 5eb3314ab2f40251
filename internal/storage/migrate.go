package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var entrySchema embed.FS

// migrateEntries brings the entries table at dbPath to the latest schema
// version and returns that version. It opens its own connection because
// closing the migrator closes the database it was given.
func migrateEntries(dbPath string) (uint, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open entries database for migration: %w", err)
	}
	defer db.Close()

	target, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("entries schema driver: %w", err)
	}
	src, err := iofs.New(entrySchema, "migrations")
	if err != nil {
		return 0, fmt.Errorf("entries schema source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("entries schema migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate entries schema: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("entries schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("entries schema version %d is dirty", version)
	}
	return version, nil
}

package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator applies the SQL files under a migrations directory.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator prepares migrations from dir against db.
func NewMigrator(db *DB, dir string) (*Migrator, error) {
	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return &Migrator{m: m}, nil
}

// Up applies every pending migration. It reports false when the schema was
// already current.
func (mg *Migrator) Up() (bool, error) {
	return changed(mg.m.Up())
}

// Down reverts steps migrations, or all of them when steps is 0.
func (mg *Migrator) Down(steps int) (bool, error) {
	if steps > 0 {
		return changed(mg.m.Steps(-steps))
	}
	return changed(mg.m.Down())
}

// Version returns the applied schema version.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func changed(err error) (bool, error) {
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migration failed: %w", err)
	}
	return true, nil
}

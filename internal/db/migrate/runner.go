// Package migrate runs database migrations from embedded SQL files using golang-migrate
// and checks that a database is at the schema version this build expects.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"lighthouse-restaurant/backend/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange is returned when Up/Down has nothing to do (already at target version).
var ErrNoChange = migrate.ErrNoChange

// ErrSchemaMismatch is returned by CheckVersion when the database is not at the embedded latest version.
var ErrSchemaMismatch = errors.New("migrate: database schema is not at the expected version")

func newSource(fsys fs.FS) (source.Driver, error) {
	sourceDriver, err := iofs.New(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	return sourceDriver, nil
}

func newMigrate(dsn string) (*migrate.Migrate, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	sourceDriver, err := newSource(db.MigrationFS)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return m, nil
}

// Run applies migrations in the given direction using the provided DSN.
// direction must be "up" or "down". Returns nil on success, including when already at the target.
func Run(dsn string, direction string) error {
	if strings.TrimSpace(dsn) == "" {
		return errors.New("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// LatestVersion returns the highest migration version embedded in fsys.
func LatestVersion(fsys fs.FS) (uint, error) {
	src, err := newSource(fsys)
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("migrate source: %w", err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return v, nil
			}
			return 0, fmt.Errorf("migrate source: %w", err)
		}
		v = next
	}
}

// CheckVersion verifies the database at dsn is migrated to the latest embedded version and is not dirty.
// The server calls it at start-up instead of probing for individual columns.
func CheckVersion(dsn string) error {
	want, err := LatestVersion(db.MigrationFS)
	if err != nil {
		return err
	}
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	got, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("%w: no migrations applied, want %d", ErrSchemaMismatch, want)
	}
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w: version %d is dirty", ErrSchemaMismatch, got)
	}
	if got != want {
		return fmt.Errorf("%w: have %d, want %d", ErrSchemaMismatch, got, want)
	}
	return nil
}

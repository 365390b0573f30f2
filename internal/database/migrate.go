package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultMigrationsDir is where storelensd looks for migrations, relative to
// its working directory.
const DefaultMigrationsDir = "migrations"

// ErrDirty means a migration failed halfway and needs manual repair.
var ErrDirty = errors.New("migration version is dirty")

// Migrator applies the SQL files in a migrations directory.
type Migrator struct {
	db *sql.DB
	m  *migrate.Migrate
}

func NewMigrator(databaseURL, dir string) (*Migrator, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations dir: %w", err)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{db: db, m: m}, nil
}

func (mg *Migrator) Close() error {
	return mg.db.Close()
}

// Up applies every pending migration and returns the resulting version.
func (mg *Migrator) Up() (uint, error) {
	upErr := mg.m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, err := mg.Version()
	if err != nil {
		return version, err
	}
	if errors.Is(upErr, migrate.ErrNoChange) {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}
	return version, nil
}

// Down rolls back steps migrations.
func (mg *Migrator) Down(steps int) (uint, error) {
	if steps < 1 {
		return 0, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return mg.Version()
}

// Version reports the applied version, 0 when nothing is applied. A dirty
// version is returned together with ErrDirty.
func (mg *Migrator) Version() (uint, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w: version %d needs manual intervention", ErrDirty, version)
	}
	return version, nil
}

// MigrateUp opens a Migrator, applies pending migrations and closes it.
func MigrateUp(databaseURL, dir string) error {
	mg, err := NewMigrator(databaseURL, dir)
	if err != nil {
		return err
	}
	defer mg.Close()

	_, err = mg.Up()
	return err
}

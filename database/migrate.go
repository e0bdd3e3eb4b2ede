package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Versioned schema for the outcome tables, one directory per driver.
//
//go:embed migrations
var migrations embed.FS

// MigrateUp applies every pending migration.
func MigrateUp(cfg Config) error {
	return withMigrate(cfg, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(cfg Config) error {
	return withMigrate(cfg, func(m *migrate.Migrate) error {
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		return nil
	})
}

// MigrationVersion returns the applied schema version, zero when nothing was applied.
func MigrationVersion(cfg Config) (version uint, dirty bool, err error) {
	err = withMigrate(cfg, func(m *migrate.Migrate) error {
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

// withMigrate opens its own connection for fn and closes it afterwards.
func withMigrate(cfg Config, fn func(*migrate.Migrate) error) error {
	db, err := Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	name := strings.ToLower(cfg.Driver)
	if name == "" {
		name = "sqlite"
	}
	source, err := iofs.New(migrations, "migrations/"+name)
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch name {
	case "mysql":
		driver, derr := migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
		if derr != nil {
			sqlDB.Close()
			return fmt.Errorf("failed to prepare migrations: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", source, "mysql", driver)
	default:
		driver, derr := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
		if derr != nil {
			sqlDB.Close()
			return fmt.Errorf("failed to prepare migrations: %w", derr)
		}
		m, err = migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	}
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	runErr := fn(m)
	srcErr, dbErr := m.Close()
	sqlDB.Close()
	if runErr != nil {
		return runErr
	}
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

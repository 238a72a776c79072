package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// sourceURL turns a migrations directory into a golang-migrate file source.
func sourceURL(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// withMigrator opens a migrator for the duration of fn.
func withMigrator(databaseURL, migrationsPath string, log zerolog.Logger, fn func(*migrate.Migrate) error) error {
	if databaseURL == "" {
		return errors.New("database url is required for migrations")
	}

	m, err := migrate.New(sourceURL(migrationsPath), databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations at %s: %w", migrationsPath, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source_error", srcErr).AnErr("database_error", dbErr).Msg("closing migrator")
		}
	}()

	return fn(m)
}

// RunMigrations brings the schema to the newest version.
func RunMigrations(databaseURL, migrationsPath string, log zerolog.Logger) error {
	return withMigrator(databaseURL, migrationsPath, log, func(m *migrate.Migrate) error {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("schema already up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		version, dirty, _ := m.Version()
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema migrated")
		return nil
	})
}

// RunMigrationsDown reverts exactly one migration.
func RunMigrationsDown(databaseURL, migrationsPath string, log zerolog.Logger) error {
	return withMigrator(databaseURL, migrationsPath, log, func(m *migrate.Migrate) error {
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("revert migration: %w", err)
		}
		version, _, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("schema reverted to empty")
			return nil
		}
		log.Info().Uint("version", version).Msg("schema reverted")
		return nil
	})
}

// MigrationVersion reports the applied version. A database with no
// migrations yet reports version 0.
func MigrationVersion(databaseURL, migrationsPath string, log zerolog.Logger) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := withMigrator(databaseURL, migrationsPath, log, func(m *migrate.Migrate) error {
		var err error
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Dosada05/tabletop-tournaments/repositories"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending "up" migration for the dialect. It opens its
// own handle because closing the migrator closes the underlying *sql.DB.
func Migrate(dialect repositories.Dialect, dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case repositories.DialectPostgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
	case repositories.DialectSQLite:
		driver, err = sqlite.WithInstance(conn, &sqlite.Config{})
	default:
		err = fmt.Errorf("no migrations for dialect %q", dialect)
	}
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schema embed.FS

// migrateLogger routes golang-migrate progress into the service log.
type migrateLogger struct{ *log.Logger }

func (migrateLogger) Verbose() bool { return false }

// RunMigrations brings the foodify schema (products, orders, order_items,
// app_settings and the order sequence) up to date. A schema left dirty by an
// interrupted run is reported instead of being migrated over.
func RunMigrations(dsn string, logger *log.Logger) error {
	conn, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("migrations: open db: %w", err)
	}
	defer conn.Close()

	src, err := iofs.New(schema, "migrations")
	if err != nil {
		return fmt.Errorf("migrations: load schema: %w", err)
	}
	target, err := postgres.WithInstance(conn, &postgres.Config{MigrationsTable: "foodify_schema_migrations"})
	if err != nil {
		return fmt.Errorf("migrations: postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", target)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	m.Log = migrateLogger{logger}

	if v, dirty, err := m.Version(); err == nil && dirty {
		return fmt.Errorf("migrations: schema is dirty at version %d, repair it and force the version", v)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Printf("migrations: schema already current")
	case err != nil:
		return fmt.Errorf("migrations: apply: %w", err)
	default:
		v, _, _ := m.Version()
		logger.Printf("migrations: schema now at version %d", v)
	}
	return nil
}

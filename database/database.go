package database

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"database/sql"

	"github.com/ray-remotestate/bistro/config"
)

var Bistro *sql.DB

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ConnectAndMigrate opens the connection pool and brings the schema up to
// date from the embedded migration files.
func ConnectAndMigrate() error {
	db, err := sql.Open("postgres", config.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	Bistro = db
	return migrateUp(db)
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logrus.Info("database schema is up to date")
	return nil
}

// Tx runs fn inside a transaction, rolling back on error or panic.
func Tx(fn func(tx *sql.Tx) error) error {
	tx, err := Bistro.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.WithError(rbErr).Error("failed to roll back transaction")
		}
		return err
	}

	return tx.Commit()
}

func ShutdownDatabase() error {
	if Bistro == nil {
		return nil
	}
	return Bistro.Close()
}

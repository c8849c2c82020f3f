package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"blogCPT/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type MethodsDB interface {
	CloseDB() error
	RunMigrations() error
	HealthCheck(ctx context.Context) error
	Driver() string
}

type DB struct {
	*sqlx.DB
}

// DSN builds the driver specific connection string.
func DSN(cfg config.DB) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.DbPATH + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DbHOST,
		cfg.DbPORT,
		cfg.DbUSER,
		cfg.DbPASSWORD,
		cfg.DbNAME,
		cfg.DbSSLMODE,
	)
}

// ConnectDB opens the pool, applies migrations and checks the connection.
func ConnectDB(cfg *config.Config) (*DB, error) {
	log.Info().Str("driver", cfg.DB.Driver).Str("db", dbName(cfg.DB)).Msg("connecting to database")

	db, err := Open(cfg.DB.Driver, DSN(cfg.DB))
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	log.Info().Str("driver", cfg.DB.Driver).Msg("database connected")
	return db, nil
}

// Open connects without running migrations.
func Open(driver, dsn string) (*DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &DB{db}, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

func (db *DB) Driver() string {
	return db.DriverName()
}

// RunMigrations executes the embedded schema for the current driver.
// Every statement is idempotent.
func (db *DB) RunMigrations() error {
	path := fmt.Sprintf("migrations/%s.sql", db.DriverName())
	migrationSQL, err := migrationsFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("no migrations for driver %s: %w", db.DriverName(), err)
	}

	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Debug().Str("file", path).Msg("migrations applied")
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	return db.PingContext(ctx)
}

func dbName(cfg config.DB) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.DbPATH
	}
	return cfg.DbNAME
}

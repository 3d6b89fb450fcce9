// Package database provides the core functionality for creating and managing
// database connections in a clean, isolated manner.
package database

import (
	"fmt"
	"time"

	"database/sql"

	"github.com/brightforge/brightforge-go/internal/infrastructure/observability/logging"
	"github.com/brightforge/brightforge-go/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
}

// Configured reports whether any persistence backend is set. When false,
// analytics ingest acknowledges snapshots without storing them.
func Configured() bool {
	return config.DatabasePath != "" || config.TursoDatabaseURL != ""
}

// DriverAndDSN resolves the driver name and data source from configuration.
// Turso takes precedence over a local SQLite file when both are set.
func DriverAndDSN() (driverName, dataSourceName string, err error) {
	switch {
	case config.TursoDatabaseURL != "":
		dsn := config.TursoDatabaseURL
		if config.TursoAuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", dsn, config.TursoAuthToken)
		}
		return "libsql", dsn, nil
	case config.DatabasePath != "":
		return "sqlite3", config.DatabasePath + "?_journal_mode=WAL&_busy_timeout=5000", nil
	default:
		return "", "", fmt.Errorf("no database configured: set DATABASE_PATH or TURSO_DATABASE_URL")
	}
}

// NewConnection establishes a new database connection for the specified driver.
func NewConnection(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	tunePool(db)
	return &DB{db}, nil
}

// NewConnectionWithLogger establishes a new database connection for the specified driver with logging.
func NewConnectionWithLogger(driverName, dataSourceName string, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Database().Debug("Creating new database connection", "driverName", driverName)

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, err
	}

	if err = db.Ping(); err != nil {
		logger.Database().Error("Database ping failed", "error", err.Error(), "driverName", driverName)
		return nil, err
	}

	tunePool(db)

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "driverName", driverName, "duration", duration)
	if duration > config.SlowQueryThreshold {
		logger.LogSlowQuery("DATABASE_CONNECTION", duration)
	}

	return &DB{db}, nil
}

func tunePool(db *sql.DB) {
	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
}

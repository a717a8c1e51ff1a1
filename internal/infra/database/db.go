package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// DriverFor picks the database/sql driver and DSN for a DATABASE_URL.
// postgres:// and postgresql:// URLs go to lib/pq, anything else is a SQLite file path.
func DriverFor(databaseURL string) (driver string, dsn string) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return "postgres", databaseURL
	}
	return "sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", databaseURL)
}

// NewConnection opens the database, pings it and applies the embedded migrations.
func NewConnection(databaseURL string) (*sqlx.DB, error) {
	driver, dsn := DriverFor(databaseURL)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer at a time.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
		db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

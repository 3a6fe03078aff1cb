package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLDB opens and pings a configured *sql.DB for the given DSN.
// maxOpenConns <= 0 keeps the default of 25 connections.
func PostgresSQLDB(ctx context.Context, dsn string, maxOpenConns int) (*sql.DB, error) {
	const defaultMaxOpenConnections = 25
	const defaultMaxIdleConnections = 10
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if maxOpenConns <= 0 {
		maxOpenConns = defaultMaxOpenConnections
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(min(defaultMaxIdleConnections, maxOpenConns))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

package config

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLXDB opens and pings a configured *sqlx.DB for the given DSN.
// maxOpenConns <= 0 keeps the default of 25 connections.
func PostgresSQLXDB(ctx context.Context, dsn string, maxOpenConns int) (*sqlx.DB, error) {
	const defaultMaxOpenConnections = 25
	const defaultMaxIdleConnections = 10
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
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

	return db, nil
}

// Package config provides PostgreSQL database configuration for ledger testing.
//
// This package contains factory functions for creating database connections
// using the supported PostgreSQL adapters (pgx.Pool, sql.DB, sqlx.DB)
// against the test database. The DSN can be overridden with LENDING_TEST_DSN.
package config

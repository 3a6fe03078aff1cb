// Package config builds the database handles and OpenTelemetry providers of the lending daemon.
//
// It contains factory functions for PostgreSQL connections using the three supported drivers
// (pgx.Pool, sql.DB with lib/pq, sqlx.DB) with pool settings suited to the ledger's short
// transactions, and the OTLP exporter setup used when telemetry export is enabled.
package config

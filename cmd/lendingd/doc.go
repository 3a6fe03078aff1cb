// Package main runs the lending ledger as an HTTP service.
//
// The daemon wires the lending handlers to a storage engine (PostgreSQL or the in-memory engine)
// and starts the daily overdue sweep. With -otel-enabled every handler also exports traces and metrics.
//
// Usage:
//
//	lendingd -db-dsn=postgres://... -db-create-schema -fine-per-day=50 -sweep-at=00:00 -sweep-tz=UTC
//	lendingd -store=memory -sweep-disabled
//
// Routes are listed in routes.go. Borrow and return answer with {success, message}; every other
// failure is an {"error": ...} envelope.
package main

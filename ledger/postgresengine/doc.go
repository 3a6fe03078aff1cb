// Package postgresengine provides a PostgreSQL implementation of the ledger.Store contract.
//
// The store supports three database adapters:
//   - pgx.Pool (recommended, optionally with a read replica)
//   - database/sql with lib/pq
//   - sqlx.DB
//
// All SQL is rendered with goqu's postgres dialect. Borrow and return run inside a real
// database transaction (Store.WithinTx). Inside a transaction GetBook and GetLoan lock the row
// they read (SELECT ... FOR UPDATE), which serializes concurrent borrows of the same book and
// concurrent returns of the same loan. Stock changes are a single conditional UPDATE that never
// lets available_stock drop below zero, and loan updates carry their status condition in the
// WHERE clause.
//
// Example usage:
//
//	store, err := postgresengine.NewStoreFromPGXPool(pool,
//		postgresengine.WithLogger(logger),
//		postgresengine.WithMetrics(metricsCollector),
//	)
//	if err != nil {
//		return err
//	}
//
//	if err = store.CreateSchema(ctx); err != nil {
//		return err
//	}
package postgresengine

// Package postgreswrapper provides test utilities for abstracting over the supported PostgreSQL adapters.
//
// The same integration test suite runs against pgx, sql.DB and sqlx.DB. The adapter is selected
// by the ADAPTER_TYPE environment variable (pgx.pool, sql.db, sqlx.db). Tests are skipped when
// the test database is unreachable.
//
// Usage:
//
//	wrapper := CreateWrapperWithTestConfig(t)
//	defer wrapper.Close()
//
//	CleanUp(t, wrapper)
//	store := wrapper.GetStore()
package postgreswrapper

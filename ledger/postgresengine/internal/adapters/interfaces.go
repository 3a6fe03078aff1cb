package adapters

import (
	"context"
)

// DBQuerier runs already rendered SQL statements.
type DBQuerier interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBAdapter defines the interface for database operations needed by the ledger store.
type DBAdapter interface {
	DBQuerier
	Begin(ctx context.Context) (DBTx, error)
}

// DBTx is an open database transaction.
type DBTx interface {
	DBQuerier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}

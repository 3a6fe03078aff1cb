package adapters

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// IsSerializationFailure reports whether err is a PostgreSQL serialization failure or deadlock,
// as reported by either pgx or lib/pq. The server has rolled back the transaction in both cases.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isRetryableSQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isRetryableSQLState(string(pqErr.Code))
	}

	return false
}

func isRetryableSQLState(code string) bool {
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}

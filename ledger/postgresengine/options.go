package postgresengine

import (
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithBooksTableName sets the name of the books table.
func WithBooksTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return ledger.ErrEmptyTableName
		}

		s.tables.books = tableName

		return nil
	}
}

// WithLoansTableName sets the name of the loans table.
func WithLoansTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return ledger.ErrEmptyTableName
		}

		s.tables.loans = tableName

		return nil
	}
}

// WithLedgerEntriesTableName sets the name of the loan journal table.
func WithLedgerEntriesTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return ledger.ErrEmptyTableName
		}

		s.tables.ledgerEntries = tableName

		return nil
	}
}

// WithSweepRunsTableName sets the name of the sweep log table.
func WithSweepRunsTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return ledger.ErrEmptyTableName
		}

		s.tables.sweepRuns = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation outcomes with durations (production-safe)
// Warn level: Non-critical issues like rollback or cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// The collector receives operation durations, operation counts by status and concurrency conflicts.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every store operation, including the transaction around borrow and return, becomes a span.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// It takes precedence over the logger set with WithLogger and receives the operation context,
// enabling automatic trace/span correlation.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

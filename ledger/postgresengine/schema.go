package postgresengine

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

// CreateSchema creates the ledger tables and indexes if they do not exist yet.
//
// Loans reference books by id without a foreign key: the catalog may delete books, and loans keep
// their own snapshot of title and author.
func (s Store) CreateSchema(ctx context.Context) error {
	for _, statement := range s.schemaStatements() {
		if _, err := s.exec(ctx, s.db, statement); err != nil {
			return err
		}
	}

	return nil
}

func (s Store) schemaStatements() []string {
	books := pq.QuoteIdentifier(s.tables.books)
	loans := pq.QuoteIdentifier(s.tables.loans)
	entries := pq.QuoteIdentifier(s.tables.ledgerEntries)
	sweepRuns := pq.QuoteIdentifier(s.tables.sweepRuns)

	index := func(table, suffix string) string {
		return pq.QuoteIdentifier(table + "_" + suffix)
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			available_stock INTEGER NOT NULL DEFAULT 1 CHECK (available_stock >= 0),
			total_copies INTEGER NOT NULL DEFAULT 1 CHECK (total_copies >= 0)
		)`, books),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			book_id TEXT NOT NULL,
			borrower_name TEXT NOT NULL,
			borrower_email TEXT NOT NULL,
			borrower_phone TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			book_title TEXT NOT NULL DEFAULT '',
			book_author TEXT NOT NULL DEFAULT '',
			borrow_date TIMESTAMPTZ NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			return_date TIMESTAMPTZ,
			status TEXT NOT NULL CHECK (status IN ('borrowed', 'overdue', 'returned')),
			fine NUMERIC NOT NULL DEFAULT 0 CHECK (fine >= 0),
			days_overdue INTEGER NOT NULL DEFAULT 0,
			last_recalculated_at TIMESTAMPTZ,
			CHECK (due_date > borrow_date)
		)`, loans),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (status, due_date)`, index(s.tables.loans, "status_due_date_idx"), loans),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (book_id)`, index(s.tables.loans, "book_id_idx"), loans),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (borrow_date DESC)`, index(s.tables.loans, "borrow_date_idx"), loans),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			sequence_number BIGSERIAL PRIMARY KEY,
			entry_type TEXT NOT NULL,
			loan_id TEXT NOT NULL,
			book_id TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL,
			metadata JSONB NOT NULL
		)`, entries),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (loan_id)`, index(s.tables.ledgerEntries, "loan_id_idx"), entries),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			ran_at TIMESTAMPTZ NOT NULL,
			updated_count INTEGER NOT NULL,
			failed_count INTEGER NOT NULL DEFAULT 0,
			fine_per_day NUMERIC NOT NULL,
			trigger_type TEXT NOT NULL CHECK (trigger_type IN ('scheduled', 'manual'))
		)`, sweepRuns),
	}
}

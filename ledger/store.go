package ledger

import (
	"context"
	"time"
)

// InventoryStore is the book side of the ledger.
type InventoryStore interface {
	// GetBook returns ErrBookNotFound if there is no book with the given id.
	// Inside a transaction the book stays locked against concurrent stock changes until the transaction ends.
	GetBook(ctx context.Context, id BookID) (Book, error)

	// IncrementStock applies availableStock += delta as one atomic step.
	// It returns ErrBookNotFound for unknown books and ErrStockWouldGoNegative if the result would be below zero,
	// in which case the stock is left unchanged.
	IncrementStock(ctx context.Context, id BookID, delta int) error
}

// LoanLedger is the loan side of the ledger.
type LoanLedger interface {
	// InsertLoan stores a new loan. Loan.ID must be set by the caller.
	InsertLoan(ctx context.Context, loan Loan) (LoanID, error)

	// GetLoan returns ErrLoanNotFound if there is no loan with the given id.
	GetLoan(ctx context.Context, id LoanID) (Loan, error)

	// UpdateLoan applies a partial update and reports whether a loan matched the id and the update's status condition.
	UpdateLoan(ctx context.Context, id LoanID, update LoanUpdate) (bool, error)

	// QueryActiveLoans returns open loans with a due date strictly before asOf, ordered by due date ascending.
	QueryActiveLoans(ctx context.Context, asOf time.Time) (Loans, error)

	// QueryAll returns loans matching the filter, newest borrow first, at most NormalizeQueryLimit(limit) of them.
	QueryAll(ctx context.Context, filter LoanFilter, limit int) (Loans, error)
}

// Tx is the transactional view of a Store. All writes through a Tx commit together or not at all.
type Tx interface {
	InventoryStore
	LoanLedger

	// AppendLedgerEntry adds a journal record within the transaction.
	AppendLedgerEntry(ctx context.Context, entry LedgerEntry) error
}

// TxFunc is the unit of work that runs inside Store.WithinTx.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is a complete storage engine of the ledger.
type Store interface {
	InventoryStore
	LoanLedger

	// WithinTx runs fn in a transaction. If fn returns an error, all its writes are rolled back and
	// the error is returned unchanged. If committing fails, the returned error wraps ErrConsistencyFailure.
	WithinTx(ctx context.Context, fn TxFunc) error

	// PutBook creates or replaces a book. It is the seam through which the external catalog provisions stock.
	PutBook(ctx context.Context, book Book) error

	// QueryLedgerEntries returns the journal of a loan in append order.
	QueryLedgerEntries(ctx context.Context, loanID LoanID) (LedgerEntries, error)

	// RecordSweepRun appends a sweep run to the sweep log.
	RecordSweepRun(ctx context.Context, run SweepRun) error

	// QuerySweepRuns returns the most recent sweep runs, newest first.
	QuerySweepRuns(ctx context.Context, limit int) (SweepRuns, error)

	// QueryStats computes the lending dashboard counters as of the given instant.
	QueryStats(ctx context.Context, asOf time.Time) (LendingStats, error)

	// QueryStockDrift returns the books whose available stock plus open loans differ from their total copies.
	QueryStockDrift(ctx context.Context) ([]StockDrift, error)
}

package memengine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Operation names the store operation a FaultInjector is asked about.
type Operation string

// Operations that can be failed with a FaultInjector.
const (
	OpGetBook           Operation = "get_book"
	OpIncrementStock    Operation = "increment_stock"
	OpInsertLoan        Operation = "insert_loan"
	OpGetLoan           Operation = "get_loan"
	OpUpdateLoan        Operation = "update_loan"
	OpQueryActiveLoans  Operation = "query_active_loans"
	OpQueryAll          Operation = "query_all"
	OpAppendLedgerEntry Operation = "append_ledger_entry"
	OpRecordSweepRun    Operation = "record_sweep_run"
	OpCommit            Operation = "commit"
)

// ErrDuplicateLoanID is returned when a loan with the same id already exists.
var ErrDuplicateLoanID = errors.New("duplicate loan id")

// FaultInjector decides whether an operation fails. The key is the book id or loan id the operation
// works on, or an empty string. Returning nil lets the operation proceed.
type FaultInjector func(op Operation, key string) error

const (
	logMsgTxRolledBack = "transaction rolled back"
	logMsgTxCommitted  = "transaction committed"
	logAttrError       = "error"
)

// Store is an in-memory ledger.Store. The zero value is not usable, create it with NewStore.
type Store struct {
	mu     sync.Mutex
	state  *state
	faults FaultInjector
	logger ledger.Logger
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithFaultInjector sets a FaultInjector that is consulted before every guarded operation.
func WithFaultInjector(faults FaultInjector) Option {
	return func(s *Store) error {
		s.faults = faults
		return nil
	}
}

// NewStore creates an empty Store.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{state: newState()}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// GetBook implements ledger.InventoryStore.
func (s *Store) GetBook(ctx context.Context, id ledger.BookID) (ledger.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpGetBook, id); err != nil {
		return ledger.Book{}, err
	}

	return s.state.getBook(id)
}

// IncrementStock implements ledger.InventoryStore.
func (s *Store) IncrementStock(ctx context.Context, id ledger.BookID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpIncrementStock, id); err != nil {
		return err
	}

	return s.state.incrementStock(id, delta)
}

// InsertLoan implements ledger.LoanLedger.
func (s *Store) InsertLoan(ctx context.Context, loan ledger.Loan) (ledger.LoanID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpInsertLoan, loan.ID); err != nil {
		return "", err
	}

	return s.state.insertLoan(loan)
}

// GetLoan implements ledger.LoanLedger.
func (s *Store) GetLoan(ctx context.Context, id ledger.LoanID) (ledger.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpGetLoan, id); err != nil {
		return ledger.Loan{}, err
	}

	return s.state.getLoan(id)
}

// UpdateLoan implements ledger.LoanLedger.
func (s *Store) UpdateLoan(ctx context.Context, id ledger.LoanID, update ledger.LoanUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpUpdateLoan, id); err != nil {
		return false, err
	}

	return s.state.updateLoan(id, update), nil
}

// QueryActiveLoans implements ledger.LoanLedger.
func (s *Store) QueryActiveLoans(ctx context.Context, asOf time.Time) (ledger.Loans, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpQueryActiveLoans, ""); err != nil {
		return nil, err
	}

	return s.state.queryActiveLoans(asOf), nil
}

// QueryAll implements ledger.LoanLedger.
func (s *Store) QueryAll(ctx context.Context, filter ledger.LoanFilter, limit int) (ledger.Loans, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpQueryAll, ""); err != nil {
		return nil, err
	}

	return s.state.queryAll(filter, limit), nil
}

// WithinTx implements ledger.Store.
//
// The store stays locked while fn runs, so fn must only use the given ledger.Tx.
func (s *Store) WithinTx(ctx context.Context, fn ledger.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, state: s.state.clone()}

	if err := fn(ctx, tx); err != nil {
		s.logDebug(logMsgTxRolledBack, logAttrError, err.Error())
		return err
	}

	if err := ctx.Err(); err != nil {
		s.logDebug(logMsgTxRolledBack, logAttrError, err.Error())
		return err
	}

	if err := s.fault(OpCommit, ""); err != nil {
		return errors.Join(ledger.ErrConsistencyFailure, ledger.ErrCommitTxFailed, err)
	}

	s.state = tx.state
	s.logDebug(logMsgTxCommitted)

	return nil
}

// PutBook implements ledger.Store.
func (s *Store) PutBook(ctx context.Context, book ledger.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.books[book.ID] = book

	return nil
}

// QueryLedgerEntries implements ledger.Store.
func (s *Store) QueryLedgerEntries(ctx context.Context, loanID ledger.LoanID) (ledger.LedgerEntries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(ledger.LedgerEntries, 0)
	for _, entry := range s.state.entries {
		if entry.LoanID == loanID {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// RecordSweepRun implements ledger.Store.
func (s *Store) RecordSweepRun(ctx context.Context, run ledger.SweepRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(ctx, OpRecordSweepRun, ""); err != nil {
		return err
	}

	s.state.sweepRuns = append(s.state.sweepRuns, run)

	return nil
}

// QuerySweepRuns implements ledger.Store.
func (s *Store) QuerySweepRuns(ctx context.Context, limit int) (ledger.SweepRuns, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limit = ledger.NormalizeQueryLimit(limit)
	runs := make(ledger.SweepRuns, 0, min(limit, len(s.state.sweepRuns)))

	for i := len(s.state.sweepRuns) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, s.state.sweepRuns[i])
	}

	return runs, nil
}

// QueryStats implements ledger.Store.
func (s *Store) QueryStats(ctx context.Context, asOf time.Time) (ledger.LendingStats, error) {
	if err := ctx.Err(); err != nil {
		return ledger.LendingStats{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := ledger.LendingStats{TotalFines: decimal.Zero}

	for _, book := range s.state.books {
		stats.TotalBooks++
		stats.AvailableCopies += book.AvailableStock
	}

	for _, loan := range s.state.loans {
		stats.TotalLoans++
		stats.TotalFines = stats.TotalFines.Add(loan.Fine)

		if loan.IsOpen() {
			stats.OpenLoans++
		}

		if loan.IsOverdueAt(asOf) {
			stats.OverdueLoans++
		}
	}

	return stats, nil
}

// QueryStockDrift implements ledger.Store.
func (s *Store) QueryStockDrift(ctx context.Context) ([]ledger.StockDrift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	openLoans := make(map[ledger.BookID]int)
	for _, loan := range s.state.loans {
		if loan.IsOpen() {
			openLoans[loan.BookID]++
		}
	}

	drifts := make([]ledger.StockDrift, 0)
	for _, book := range s.state.books {
		if book.AvailableStock+openLoans[book.ID] == book.TotalCopies {
			continue
		}

		drifts = append(drifts, ledger.StockDrift{
			BookID:         book.ID,
			AvailableStock: book.AvailableStock,
			OpenLoans:      openLoans[book.ID],
			TotalCopies:    book.TotalCopies,
		})
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].BookID < drifts[j].BookID })

	return drifts, nil
}

func (s *Store) guard(ctx context.Context, op Operation, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.fault(op, key)
}

func (s *Store) fault(op Operation, key string) error {
	if s.faults == nil {
		return nil
	}

	return s.faults(op, key)
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// memTx is the ledger.Tx handed to WithinTx callbacks. The store's mutex is held by WithinTx.
type memTx struct {
	store *Store
	state *state
}

func (tx *memTx) GetBook(ctx context.Context, id ledger.BookID) (ledger.Book, error) {
	if err := tx.store.guard(ctx, OpGetBook, id); err != nil {
		return ledger.Book{}, err
	}

	return tx.state.getBook(id)
}

func (tx *memTx) IncrementStock(ctx context.Context, id ledger.BookID, delta int) error {
	if err := tx.store.guard(ctx, OpIncrementStock, id); err != nil {
		return err
	}

	return tx.state.incrementStock(id, delta)
}

func (tx *memTx) InsertLoan(ctx context.Context, loan ledger.Loan) (ledger.LoanID, error) {
	if err := tx.store.guard(ctx, OpInsertLoan, loan.ID); err != nil {
		return "", err
	}

	return tx.state.insertLoan(loan)
}

func (tx *memTx) GetLoan(ctx context.Context, id ledger.LoanID) (ledger.Loan, error) {
	if err := tx.store.guard(ctx, OpGetLoan, id); err != nil {
		return ledger.Loan{}, err
	}

	return tx.state.getLoan(id)
}

func (tx *memTx) UpdateLoan(ctx context.Context, id ledger.LoanID, update ledger.LoanUpdate) (bool, error) {
	if err := tx.store.guard(ctx, OpUpdateLoan, id); err != nil {
		return false, err
	}

	return tx.state.updateLoan(id, update), nil
}

func (tx *memTx) QueryActiveLoans(ctx context.Context, asOf time.Time) (ledger.Loans, error) {
	if err := tx.store.guard(ctx, OpQueryActiveLoans, ""); err != nil {
		return nil, err
	}

	return tx.state.queryActiveLoans(asOf), nil
}

func (tx *memTx) QueryAll(ctx context.Context, filter ledger.LoanFilter, limit int) (ledger.Loans, error) {
	if err := tx.store.guard(ctx, OpQueryAll, ""); err != nil {
		return nil, err
	}

	return tx.state.queryAll(filter, limit), nil
}

func (tx *memTx) AppendLedgerEntry(ctx context.Context, entry ledger.LedgerEntry) error {
	if err := tx.store.guard(ctx, OpAppendLedgerEntry, entry.LoanID); err != nil {
		return err
	}

	tx.state.appendEntry(entry)

	return nil
}

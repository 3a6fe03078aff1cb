package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName         = "books"
	defaultLoansTableName         = "loans"
	defaultLedgerEntriesTableName = "loan_ledger_entries"
	defaultSweepRunsTableName     = "sweep_runs"
	dialectPostgres               = "postgres"
)

// Store is the PostgreSQL ledger.Store.
// It leverages a database adapter and supports customizable table names and observability.
type Store struct {
	db               adapters.DBAdapter
	tables           tableNames
	logger           ledger.Logger
	metricsCollector ledger.MetricsCollector
	tracingCollector ledger.TracingCollector
	contextualLogger ledger.ContextualLogger
}

type tableNames struct {
	books         string
	loans         string
	ledgerEntries string
	sweepRuns     string
}

func defaultTableNames() tableNames {
	return tableNames{
		books:         defaultBooksTableName,
		loans:         defaultLoansTableName,
		ledgerEntries: defaultLedgerEntriesTableName,
		sweepRuns:     defaultSweepRunsTableName,
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a primary pgx Pool and a replica pool.
// Reads run on the replica when the context carries ledger.WithEventualConsistency.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{
		db:     db,
		tables: defaultTableNames(),
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// GetBook implements ledger.InventoryStore.
func (s Store) GetBook(ctx context.Context, id ledger.BookID) (ledger.Book, error) {
	var book ledger.Book

	err := s.instrument(ctx, operationGetBook, func(ctx context.Context) error {
		var err error
		book, err = s.getBook(ctx, s.db, id, false)
		return err
	})

	return book, err
}

// IncrementStock implements ledger.InventoryStore.
func (s Store) IncrementStock(ctx context.Context, id ledger.BookID, delta int) error {
	return s.instrument(ctx, operationIncrementStock, func(ctx context.Context) error {
		return s.incrementStock(ctx, s.db, id, delta)
	})
}

// InsertLoan implements ledger.LoanLedger.
func (s Store) InsertLoan(ctx context.Context, loan ledger.Loan) (ledger.LoanID, error) {
	err := s.instrument(ctx, operationInsertLoan, func(ctx context.Context) error {
		return s.insertLoan(ctx, s.db, loan)
	})
	if err != nil {
		return "", err
	}

	return loan.ID, nil
}

// GetLoan implements ledger.LoanLedger.
func (s Store) GetLoan(ctx context.Context, id ledger.LoanID) (ledger.Loan, error) {
	var loan ledger.Loan

	err := s.instrument(ctx, operationGetLoan, func(ctx context.Context) error {
		var err error
		loan, err = s.getLoan(ctx, s.db, id, false)
		return err
	})

	return loan, err
}

// UpdateLoan implements ledger.LoanLedger.
func (s Store) UpdateLoan(ctx context.Context, id ledger.LoanID, update ledger.LoanUpdate) (bool, error) {
	var matched bool

	err := s.instrument(ctx, operationUpdateLoan, func(ctx context.Context) error {
		var err error
		matched, err = s.updateLoan(ctx, s.db, id, update)
		return err
	})

	return matched, err
}

// QueryActiveLoans implements ledger.LoanLedger.
func (s Store) QueryActiveLoans(ctx context.Context, asOf time.Time) (ledger.Loans, error) {
	var loans ledger.Loans

	err := s.instrument(ctx, operationQueryActiveLoans, func(ctx context.Context) error {
		var err error
		loans, err = s.queryActiveLoans(ctx, s.db, asOf)
		return err
	})

	return loans, err
}

// QueryAll implements ledger.LoanLedger.
func (s Store) QueryAll(ctx context.Context, filter ledger.LoanFilter, limit int) (ledger.Loans, error) {
	var loans ledger.Loans

	err := s.instrument(ctx, operationQueryAll, func(ctx context.Context) error {
		var err error
		loans, err = s.queryAll(ctx, s.db, filter, limit)
		return err
	})

	return loans, err
}

// WithinTx implements ledger.Store.
//
// When fn fails the transaction is rolled back and fn's error is returned unchanged.
// A serialization failure or deadlock at commit time is reported as ledger.ErrConcurrencyConflict,
// any other commit failure as ledger.ErrConsistencyFailure.
func (s Store) WithinTx(ctx context.Context, fn ledger.TxFunc) error {
	return s.instrument(ctx, operationTransaction, func(ctx context.Context) error {
		dbTx, err := s.db.Begin(ctx)
		if err != nil {
			return s.dbError(ctx, logMsgBeginTxFailed, ledger.ErrBeginTxFailed, err)
		}

		if err = fn(ctx, pgTx{store: s, db: dbTx}); err != nil {
			s.rollback(ctx, dbTx)
			return err
		}

		if err = dbTx.Commit(ctx); err != nil {
			if adapters.IsSerializationFailure(err) {
				return errors.Join(ledger.ErrConcurrencyConflict, err)
			}

			s.logErrorContext(ctx, logMsgCommitTxFailed, err)

			return errors.Join(ledger.ErrConsistencyFailure, ledger.ErrCommitTxFailed, err)
		}

		return nil
	})
}

// PutBook implements ledger.Store.
func (s Store) PutBook(ctx context.Context, book ledger.Book) error {
	return s.instrument(ctx, operationPutBook, func(ctx context.Context) error {
		return s.putBook(ctx, s.db, book)
	})
}

// QueryLedgerEntries implements ledger.Store.
func (s Store) QueryLedgerEntries(ctx context.Context, loanID ledger.LoanID) (ledger.LedgerEntries, error) {
	var entries ledger.LedgerEntries

	err := s.instrument(ctx, operationQueryLedgerEntries, func(ctx context.Context) error {
		var err error
		entries, err = s.queryLedgerEntries(ctx, s.db, loanID)
		return err
	})

	return entries, err
}

// RecordSweepRun implements ledger.Store.
func (s Store) RecordSweepRun(ctx context.Context, run ledger.SweepRun) error {
	return s.instrument(ctx, operationRecordSweepRun, func(ctx context.Context) error {
		return s.recordSweepRun(ctx, s.db, run)
	})
}

// QuerySweepRuns implements ledger.Store.
func (s Store) QuerySweepRuns(ctx context.Context, limit int) (ledger.SweepRuns, error) {
	var runs ledger.SweepRuns

	err := s.instrument(ctx, operationQuerySweepRuns, func(ctx context.Context) error {
		var err error
		runs, err = s.querySweepRuns(ctx, s.db, limit)
		return err
	})

	return runs, err
}

// QueryStats implements ledger.Store.
func (s Store) QueryStats(ctx context.Context, asOf time.Time) (ledger.LendingStats, error) {
	var stats ledger.LendingStats

	err := s.instrument(ctx, operationQueryStats, func(ctx context.Context) error {
		var err error
		stats, err = s.queryStats(ctx, s.db, asOf)
		return err
	})

	return stats, err
}

// QueryStockDrift implements ledger.Store.
func (s Store) QueryStockDrift(ctx context.Context) ([]ledger.StockDrift, error) {
	var drifts []ledger.StockDrift

	err := s.instrument(ctx, operationQueryStockDrift, func(ctx context.Context) error {
		var err error
		drifts, err = s.queryStockDrift(ctx, s.db)
		return err
	})

	return drifts, err
}

func (s Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func (s Store) rollback(ctx context.Context, dbTx adapters.DBTx) {
	if err := dbTx.Rollback(context.WithoutCancel(ctx)); err != nil {
		s.logWarnContext(ctx, logMsgRollbackTxFailed, err)
	}
}

// pgTx is the ledger.Tx handed to WithinTx callbacks.
type pgTx struct {
	store Store
	db    adapters.DBTx
}

func (tx pgTx) GetBook(ctx context.Context, id ledger.BookID) (ledger.Book, error) {
	var book ledger.Book

	err := tx.store.instrument(ctx, operationGetBook, func(ctx context.Context) error {
		var err error
		book, err = tx.store.getBook(ctx, tx.db, id, true)
		return err
	})

	return book, err
}

func (tx pgTx) IncrementStock(ctx context.Context, id ledger.BookID, delta int) error {
	return tx.store.instrument(ctx, operationIncrementStock, func(ctx context.Context) error {
		return tx.store.incrementStock(ctx, tx.db, id, delta)
	})
}

func (tx pgTx) InsertLoan(ctx context.Context, loan ledger.Loan) (ledger.LoanID, error) {
	err := tx.store.instrument(ctx, operationInsertLoan, func(ctx context.Context) error {
		return tx.store.insertLoan(ctx, tx.db, loan)
	})
	if err != nil {
		return "", err
	}

	return loan.ID, nil
}

func (tx pgTx) GetLoan(ctx context.Context, id ledger.LoanID) (ledger.Loan, error) {
	var loan ledger.Loan

	err := tx.store.instrument(ctx, operationGetLoan, func(ctx context.Context) error {
		var err error
		loan, err = tx.store.getLoan(ctx, tx.db, id, true)
		return err
	})

	return loan, err
}

func (tx pgTx) UpdateLoan(ctx context.Context, id ledger.LoanID, update ledger.LoanUpdate) (bool, error) {
	var matched bool

	err := tx.store.instrument(ctx, operationUpdateLoan, func(ctx context.Context) error {
		var err error
		matched, err = tx.store.updateLoan(ctx, tx.db, id, update)
		return err
	})

	return matched, err
}

func (tx pgTx) QueryActiveLoans(ctx context.Context, asOf time.Time) (ledger.Loans, error) {
	var loans ledger.Loans

	err := tx.store.instrument(ctx, operationQueryActiveLoans, func(ctx context.Context) error {
		var err error
		loans, err = tx.store.queryActiveLoans(ctx, tx.db, asOf)
		return err
	})

	return loans, err
}

func (tx pgTx) QueryAll(ctx context.Context, filter ledger.LoanFilter, limit int) (ledger.Loans, error) {
	var loans ledger.Loans

	err := tx.store.instrument(ctx, operationQueryAll, func(ctx context.Context) error {
		var err error
		loans, err = tx.store.queryAll(ctx, tx.db, filter, limit)
		return err
	})

	return loans, err
}

func (tx pgTx) AppendLedgerEntry(ctx context.Context, entry ledger.LedgerEntry) error {
	return tx.store.instrument(ctx, operationAppendLedgerEntry, func(ctx context.Context) error {
		return tx.store.appendLedgerEntry(ctx, tx.db, entry)
	})
}

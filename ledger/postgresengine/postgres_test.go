package postgresengine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/testutil/observability/testdoubles"
	. "github.com/AntonStoeckl/lending-ledger-go/testutil/postgresengine/postgreswrapper" //nolint:revive
)

func givenBook(t *testing.T, ctx context.Context, store postgresengine.Store, id ledger.BookID, stock int) {
	t.Helper()

	err := store.PutBook(ctx, ledger.Book{
		ID:             id,
		Title:          "A Wizard of Earthsea",
		Author:         "Ursula K. Le Guin",
		AvailableStock: stock,
		TotalCopies:    stock,
	})
	require.NoError(t, err, "error in arranging test data")
}

func fixtureLoan(bookID ledger.BookID, borrowedAt time.Time, status ledger.LoanStatus) ledger.Loan {
	return ledger.Loan{
		ID:            ledger.LoanID(uuid.NewString()),
		BookID:        bookID,
		BorrowerName:  "Ged Sparrowhawk",
		BorrowerEmail: "ged@roke.example",
		BookTitle:     "A Wizard of Earthsea",
		BookAuthor:    "Ursula K. Le Guin",
		BorrowDate:    borrowedAt,
		DueDate:       borrowedAt.Add(14 * ledger.Day),
		Status:        status,
		Fine:          decimal.Zero,
	}
}

func givenLoan(t *testing.T, ctx context.Context, store postgresengine.Store, loan ledger.Loan) ledger.Loan {
	t.Helper()

	_, err := store.InsertLoan(ctx, loan)
	require.NoError(t, err, "error in arranging test data")

	return loan
}

func Test_FactoryFunctions_RejectNilConnections(t *testing.T) {
	_, errPGX := postgresengine.NewStoreFromPGXPool(nil)
	_, errReplica := postgresengine.NewStoreFromPGXPoolAndReplica(nil, &pgxpool.Pool{})
	_, errSQL := postgresengine.NewStoreFromSQLDB(nil)
	_, errSQLX := postgresengine.NewStoreFromSQLX(nil)

	assert.ErrorIs(t, errPGX, ledger.ErrNilDatabaseConnection)
	assert.ErrorIs(t, errReplica, ledger.ErrNilDatabaseConnection)
	assert.ErrorIs(t, errSQL, ledger.ErrNilDatabaseConnection)
	assert.ErrorIs(t, errSQLX, ledger.ErrNilDatabaseConnection)
}

func Test_PutBook_UpsertsAndGetBookReadsIt(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	givenBook(t, ctx, store, "book-1", 2)

	// act
	err := store.PutBook(ctx, ledger.Book{ID: "book-1", Title: "The Tombs of Atuan", AvailableStock: 3, TotalCopies: 4})
	require.NoError(t, err)
	book, err := store.GetBook(ctx, "book-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "The Tombs of Atuan", book.Title)
	assert.Equal(t, 3, book.AvailableStock)
	assert.Equal(t, 4, book.TotalCopies)

	_, err = store.GetBook(ctx, "unknown")
	assert.ErrorIs(t, err, ledger.ErrBookNotFound)
}

func Test_IncrementStock_NeverGoesBelowZero(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	givenBook(t, ctx, store, "book-1", 1)

	// act
	errFirst := store.IncrementStock(ctx, "book-1", -1)
	errSecond := store.IncrementStock(ctx, "book-1", -1)
	errUnknown := store.IncrementStock(ctx, "unknown", 1)

	// assert
	assert.NoError(t, errFirst)
	assert.ErrorIs(t, errSecond, ledger.ErrStockWouldGoNegative)
	assert.ErrorIs(t, errUnknown, ledger.ErrBookNotFound)

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableStock)
}

func Test_InsertLoan_And_GetLoan_KeepAllFields(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	borrowedAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	loan := fixtureLoan("book-1", borrowedAt, ledger.LoanStatusBorrowed)
	loan.BorrowerPhone = "+1 555 0100"
	loan.Notes = "slightly worn cover"
	loan.Fine = decimal.RequireFromString("12.50")

	// act
	id, err := store.InsertLoan(ctx, loan)
	require.NoError(t, err)
	got, err := store.GetLoan(ctx, id)

	// assert
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
	assert.Equal(t, loan.BorrowerPhone, got.BorrowerPhone)
	assert.Equal(t, loan.Notes, got.Notes)
	assert.True(t, loan.BorrowDate.Equal(got.BorrowDate))
	assert.True(t, loan.DueDate.Equal(got.DueDate))
	assert.True(t, got.ReturnDate.IsZero())
	assert.Equal(t, ledger.LoanStatusBorrowed, got.Status)
	assert.True(t, loan.Fine.Equal(got.Fine), "fine should survive the round trip: %s", got.Fine)

	_, err = store.GetLoan(ctx, "unknown")
	assert.ErrorIs(t, err, ledger.ErrLoanNotFound)
}

func Test_UpdateLoan_IsConditionalOnStatus(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	borrowedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	returnedAt := borrowedAt.Add(20 * ledger.Day)
	loan := givenLoan(t, ctx, store, fixtureLoan("book-1", borrowedAt, ledger.LoanStatusBorrowed))

	// act
	matchedReturn, errReturn := store.UpdateLoan(ctx, loan.ID, ledger.MarkReturned(returnedAt, decimal.NewFromInt(300), nil))
	matchedOverdue, errOverdue := store.UpdateLoan(ctx, loan.ID, ledger.MarkOverdue(returnedAt, 6, decimal.NewFromInt(1)))
	matchedUnknown, errUnknown := store.UpdateLoan(ctx, "unknown", ledger.MarkOverdue(returnedAt, 6, decimal.NewFromInt(1)))

	// assert
	require.NoError(t, errReturn)
	require.NoError(t, errOverdue)
	require.NoError(t, errUnknown)
	assert.True(t, matchedReturn)
	assert.False(t, matchedOverdue)
	assert.False(t, matchedUnknown)

	got, err := store.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.LoanStatusReturned, got.Status)
	assert.True(t, got.ReturnDate.Equal(returnedAt))
	assert.True(t, got.Fine.Equal(decimal.NewFromInt(300)))
}

func Test_WithinTx_RollsBackAllWritesOnError(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	givenBook(t, ctx, store, "book-1", 1)
	loan := fixtureLoan("book-1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ledger.LoanStatusBorrowed)
	failure := errors.New("journal write failed")

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		if err := tx.IncrementStock(ctx, "book-1", -1); err != nil {
			return err
		}

		if _, err := tx.InsertLoan(ctx, loan); err != nil {
			return err
		}

		return failure
	})

	// assert
	assert.ErrorIs(t, err, failure)

	book, errGet := store.GetBook(ctx, "book-1")
	require.NoError(t, errGet)
	assert.Equal(t, 1, book.AvailableStock)

	_, errGet = store.GetLoan(ctx, loan.ID)
	assert.ErrorIs(t, errGet, ledger.ErrLoanNotFound)
}

func Test_WithinTx_CommitsLoanStockAndJournalTogether(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	givenBook(t, ctx, store, "book-1", 2)
	borrowedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	loan := fixtureLoan("book-1", borrowedAt, ledger.LoanStatusBorrowed)
	entry, err := ledger.BuildLedgerEntry(
		"BookCopyLent",
		loan.ID,
		loan.BookID,
		borrowedAt,
		[]byte(`{"BorrowerEmail":"ged@roke.example"}`),
		[]byte(`{"MessageID":"m-1"}`),
	)
	require.NoError(t, err)

	// act
	err = store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		if _, err := tx.GetBook(ctx, "book-1"); err != nil {
			return err
		}

		if err := tx.IncrementStock(ctx, "book-1", -1); err != nil {
			return err
		}

		if _, err := tx.InsertLoan(ctx, loan); err != nil {
			return err
		}

		return tx.AppendLedgerEntry(ctx, entry)
	})

	// assert
	require.NoError(t, err)

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.AvailableStock)

	entries, err := store.QueryLedgerEntries(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BookCopyLent", entries[0].EntryType)
	assert.Equal(t, uint(1), entries[0].SequenceNumber)
	assert.JSONEq(t, `{"BorrowerEmail":"ged@roke.example"}`, string(entries[0].PayloadJSON))
	assert.True(t, entries[0].OccurredAt.Equal(borrowedAt))
}

func Test_QueryActiveLoans_ReturnsOpenLoansPastDueOrderedByDueDate(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := givenLoan(t, ctx, store, fixtureLoan("book-1", start.Add(2*ledger.Day), ledger.LoanStatusOverdue))
	earlier := givenLoan(t, ctx, store, fixtureLoan("book-2", start, ledger.LoanStatusBorrowed))
	givenLoan(t, ctx, store, fixtureLoan("book-3", start, ledger.LoanStatusReturned))
	givenLoan(t, ctx, store, fixtureLoan("book-4", start.Add(30*ledger.Day), ledger.LoanStatusBorrowed))
	asOf := start.Add(20 * ledger.Day)

	// act
	loans, err := store.QueryActiveLoans(ctx, asOf)

	// assert
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, earlier.ID, loans[0].ID)
	assert.Equal(t, later.ID, loans[1].ID)
}

func Test_QueryAll_FiltersSearchesAndLimits(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := fixtureLoan("book-1", start, ledger.LoanStatusBorrowed)
	first.BorrowerName = "Tenar"
	first.BorrowerEmail = "tenar@atuan.example"
	givenLoan(t, ctx, store, first)
	second := givenLoan(t, ctx, store, fixtureLoan("book-2", start.Add(ledger.Day), ledger.LoanStatusBorrowed))
	third := givenLoan(t, ctx, store, fixtureLoan("book-3", start.Add(2*ledger.Day), ledger.LoanStatusReturned))

	// act
	all, errAll := store.QueryAll(ctx, ledger.BuildLoanFilter().Finalize(), 0)
	limited, errLimited := store.QueryAll(ctx, ledger.BuildLoanFilter().Finalize(), 2)
	searched, errSearched := store.QueryAll(ctx, ledger.BuildLoanFilter().Searching("ATUAN").Finalize(), 0)
	open, errOpen := store.QueryAll(ctx, ledger.BuildLoanFilter().WithStatusIn(ledger.OpenLoanStatuses()...).Finalize(), 0)

	// assert
	require.NoError(t, errAll)
	require.NoError(t, errLimited)
	require.NoError(t, errSearched)
	require.NoError(t, errOpen)

	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "newest borrow first")
	require.Len(t, limited, 2)
	assert.Equal(t, second.ID, limited[1].ID)
	require.Len(t, searched, 1)
	assert.Equal(t, first.ID, searched[0].ID)
	assert.Len(t, open, 2)
}

func Test_QueryStats_And_QueryStockDrift(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	givenBook(t, ctx, store, "book-1", 2)
	givenBook(t, ctx, store, "book-2", 1)
	require.NoError(t, store.IncrementStock(ctx, "book-1", -1))
	givenLoan(t, ctx, store, fixtureLoan("book-1", start, ledger.LoanStatusBorrowed))
	returned := fixtureLoan("book-2", start, ledger.LoanStatusReturned)
	returned.Fine = decimal.RequireFromString("75.50")
	givenLoan(t, ctx, store, returned)
	givenLoan(t, ctx, store, fixtureLoan("book-2", start.Add(ledger.Day), ledger.LoanStatusBorrowed)) // no stock taken

	// act
	stats, errStats := store.QueryStats(ctx, start.Add(30*ledger.Day))
	drifts, errDrift := store.QueryStockDrift(ctx)

	// assert
	require.NoError(t, errStats)
	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 2, stats.AvailableCopies)
	assert.Equal(t, 3, stats.TotalLoans)
	assert.Equal(t, 2, stats.OpenLoans)
	assert.Equal(t, 2, stats.OverdueLoans)
	assert.True(t, stats.TotalFines.Equal(decimal.RequireFromString("75.50")))

	require.NoError(t, errDrift)
	require.Len(t, drifts, 1)
	assert.Equal(t, ledger.BookID("book-2"), drifts[0].BookID)
	assert.Equal(t, -1, drifts[0].Delta())
}

func Test_RecordSweepRun_And_QuerySweepRuns_NewestFirst(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		err := store.RecordSweepRun(ctx, ledger.SweepRun{
			RanAt:        start.Add(time.Duration(i) * ledger.Day),
			UpdatedCount: i,
			FinePerDay:   decimal.NewFromInt(50),
			Trigger:      ledger.SweepTriggerScheduled,
		})
		require.NoError(t, err)
	}

	// act
	runs, err := store.QuerySweepRuns(ctx, 2)

	// assert
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].UpdatedCount)
	assert.Equal(t, 1, runs[1].UpdatedCount)
	assert.True(t, runs[0].FinePerDay.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, ledger.SweepTriggerScheduled, runs[0].Trigger)
}

func Test_ConcurrentBorrowTransactions_NeverOversellStock(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	const stock = 3
	const borrowers = 12
	givenBook(t, ctx, store, "book-1", stock)
	borrowedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var succeeded atomic.Int32
	var wg sync.WaitGroup

	// act
	for range borrowers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
				book, err := tx.GetBook(ctx, "book-1")
				if err != nil {
					return err
				}

				if !book.HasStock() {
					return ledger.Reject(ledger.RejectionConflict, ledger.ErrBookNotAvailable)
				}

				if err = tx.IncrementStock(ctx, "book-1", -1); err != nil {
					return err
				}

				_, err = tx.InsertLoan(ctx, fixtureLoan("book-1", borrowedAt, ledger.LoanStatusBorrowed))

				return err
			})

			if err == nil {
				succeeded.Add(1)
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(stock), succeeded.Load())

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableStock)

	drifts, err := store.QueryStockDrift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func Test_Observability_RecordsOperationMetricsAndSpans(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	tracingSpy := testdoubles.NewTracingCollectorSpy(true)
	loggerSpy := testdoubles.NewContextualLoggerSpy(true)

	wrapper := CreateWrapperWithTestConfig(
		t,
		postgresengine.WithMetrics(metricsSpy),
		postgresengine.WithTracing(tracingSpy),
		postgresengine.WithContextualLogger(loggerSpy),
	)
	defer wrapper.Close()
	store := wrapper.GetStore()

	// arrange
	CleanUp(t, wrapper)
	givenBook(t, ctx, store, "book-1", 0)
	metricsSpy.Reset()

	// act
	_, errGet := store.GetBook(ctx, "book-1")
	errIncrement := store.IncrementStock(ctx, "book-1", -1)

	// assert
	require.NoError(t, errGet)
	assert.ErrorIs(t, errIncrement, ledger.ErrStockWouldGoNegative)

	assert.True(t, metricsSpy.HasDurationRecordForMetric("ledger_operation_duration_seconds").
		WithOperation("get_book").
		WithStatus("success").
		Assert())
	assert.True(t, metricsSpy.HasCounterRecordForMetric("ledger_operations_total").
		WithOperation("increment_stock").
		WithStatus("rejected").
		Assert())
	assert.True(t, tracingSpy.HasSpanRecordForName("ledger.get_book").
		WithStartAttribute("operation", "get_book").
		WithStatus("success").
		Assert())
	assert.True(t, loggerSpy.HasInfoLog("ledger operation completed"))
}

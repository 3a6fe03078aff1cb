package borrowbook_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/memengine"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/borrowbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
	. "github.com/AntonStoeckl/lending-ledger-go/testutil/fixtures" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewMemStore(t)
	book := GivenBook(t, ctx, store, "The Left Hand of Darkness", 3)
	handler := borrowbook.NewCommandHandler(store)
	now := time.Now()

	// act
	command := buildCommand(book.ID, now.Add(7*ledger.Day), now)
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.Equal(t, command.LoanID.String(), result.LoanID)
	assert.Equal(t, 1, result.RetryAttempts)
	RequireStock(t, ctx, store, book.ID, 2)

	loan := RequireLoan(t, ctx, store, result.LoanID)
	assert.Equal(t, ledger.LoanStatusBorrowed, loan.Status)
	assert.True(t, loan.Fine.IsZero())
	assert.Equal(t, "The Left Hand of Darkness", loan.BookTitle)
	assert.Equal(t, "genly@gethen.example", loan.BorrowerEmail)
	assert.True(t, command.OccurredAt.Equal(loan.BorrowDate))

	entries, err := store.QueryLedgerEntries(ctx, result.LoanID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.BookCopyLentEntryType, entries[0].EntryType)
	assert.Equal(t, book.ID, entries[0].BookID)
}

func Test_CommandHandler_Handle_Rejected_ZeroStock(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewMemStore(t)
	book := GivenBook(t, ctx, store, "The Lathe of Heaven", 0)
	handler := borrowbook.NewCommandHandler(store)
	now := time.Now()

	// act
	_, err := handler.Handle(ctx, buildCommand(book.ID, now.Add(7*ledger.Day), now))

	// assert
	assert.ErrorIs(t, err, ledger.ErrBookNotAvailable)
	assert.Contains(t, err.Error(), "not available")
	RequireStock(t, ctx, store, book.ID, 0)

	loans, err := store.QueryAll(ctx, ledger.BuildLoanFilter().ForBook(book.ID).Finalize(), 0)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func Test_CommandHandler_Handle_Rejected_UnknownBook(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewMemStore(t)
	handler := borrowbook.NewCommandHandler(store)
	now := time.Now()

	// act
	_, err := handler.Handle(ctx, buildCommand("no-such-book", now.Add(ledger.Day), now))

	// assert
	assert.ErrorIs(t, err, ledger.ErrBookNotFound)
	assert.True(t, ledger.IsRejection(err))
}

func Test_CommandHandler_Handle_ValidationDoesNotTouchStore(t *testing.T) {
	// setup
	ctx := context.Background()
	var touched atomic.Bool
	store := NewMemStore(t, memengine.WithFaultInjector(func(_ memengine.Operation, _ string) error {
		touched.Store(true)
		return nil
	}))
	handler := borrowbook.NewCommandHandler(store)
	now := time.Now()

	// act
	_, err := handler.Handle(ctx, buildCommand("book-1", now.Add(-ledger.Day), now))

	// assert
	assert.ErrorIs(t, err, ledger.ErrDueDateNotInFuture)
	assert.False(t, touched.Load())
}

func Test_CommandHandler_Handle_FailureAfterStockWriteRollsBackEverything(t *testing.T) {
	for _, failingOp := range []memengine.Operation{memengine.OpInsertLoan, memengine.OpAppendLedgerEntry, memengine.OpCommit} {
		t.Run(string(failingOp), func(t *testing.T) {
			// setup
			ctx := context.Background()
			injected := errors.New("disk full")
			store := NewMemStore(t, memengine.WithFaultInjector(func(op memengine.Operation, _ string) error {
				if op == failingOp {
					return injected
				}
				return nil
			}))
			book := GivenBook(t, ctx, store, "A Wizard of Earthsea", 1)
			handler := borrowbook.NewCommandHandler(store)
			now := time.Now()

			// act
			result, err := handler.Handle(ctx, buildCommand(book.ID, now.Add(ledger.Day), now))

			// assert
			assert.ErrorIs(t, err, injected)
			assert.False(t, ledger.IsRejection(err))
			assert.Empty(t, result.LoanID)
			RequireStock(t, ctx, store, book.ID, 1)

			loans, qErr := store.QueryAll(ctx, ledger.BuildLoanFilter().Finalize(), 0)
			require.NoError(t, qErr)
			assert.Empty(t, loans)
		})
	}
}

func Test_CommandHandler_Handle_RetriesConcurrencyConflict(t *testing.T) {
	// setup
	ctx := context.Background()
	var conflicts atomic.Int32
	store := NewMemStore(t, memengine.WithFaultInjector(func(op memengine.Operation, _ string) error {
		if op == memengine.OpGetBook && conflicts.Add(1) == 1 {
			return ledger.ErrConcurrencyConflict
		}
		return nil
	}))
	book := GivenBook(t, ctx, store, "Tehanu", 1)
	handler := borrowbook.NewCommandHandler(store, borrowbook.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))
	now := time.Now()

	// act
	result, err := handler.Handle(ctx, buildCommand(book.ID, now.Add(ledger.Day), now))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.RetryAttempts)
	RequireStock(t, ctx, store, book.ID, 0)
}

func Test_CommandHandler_Handle_ConcurrentBorrowsNeverOversell(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewMemStore(t)
	book := GivenBook(t, ctx, store, "The Word for World Is Forest", 3)
	handler := borrowbook.NewCommandHandler(store)
	now := time.Now()

	const borrowers = 10
	var wg sync.WaitGroup
	var successes, rejections atomic.Int32

	// act
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := handler.Handle(ctx, buildCommand(book.ID, now.Add(ledger.Day), now))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ledger.ErrBookNotAvailable):
				rejections.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, int32(3), successes.Load())
	assert.Equal(t, int32(borrowers-3), rejections.Load())
	RequireStock(t, ctx, store, book.ID, 0)
}

func buildCommand(bookID ledger.BookID, dueDate time.Time, now time.Time) borrowbook.Command {
	return borrowbook.BuildCommand(
		uuid.New(),
		bookID,
		borrowbook.Borrower{Name: "Genly Ai", Email: "genly@gethen.example", Phone: "+1 555 0199"},
		dueDate,
		"",
		now,
	)
}

func Test_CommandHandler_Handle_Rejected_DueDateWithinTheSameMicrosecond(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewMemStore(t)
	book := GivenBook(t, ctx, store, "Searoad", 1)
	handler := borrowbook.NewCommandHandler(store)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 123456100, time.UTC)

	// act
	_, err := handler.Handle(ctx, buildCommand(book.ID, now.Add(500*time.Nanosecond), now))

	// assert
	assert.ErrorIs(t, err, ledger.ErrDueDateNotInFuture)
	RequireStock(t, ctx, store, book.ID, 1)
}

func Test_CommandHandler_Handle_StoresDueDateStrictlyAfterBorrowDate(t *testing.T) {
	// setup
	ctx := context.Background()
	store := NewMemStore(t)
	book := GivenBook(t, ctx, store, "Searoad", 1)
	handler := borrowbook.NewCommandHandler(store)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 123456100, time.UTC)

	// act
	result, err := handler.Handle(ctx, buildCommand(book.ID, now.Add(time.Microsecond+500*time.Nanosecond), now))

	// assert
	require.NoError(t, err)

	loan := RequireLoan(t, ctx, store, result.LoanID)
	assert.True(t, loan.DueDate.After(loan.BorrowDate), "due %s must be after borrow %s", loan.DueDate, loan.BorrowDate)
	assert.Equal(t, loan.DueDate, loan.DueDate.Truncate(time.Microsecond))
}

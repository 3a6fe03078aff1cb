package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/memengine"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/borrowbook"
)

// DefaultFinePerDay is the rate the lending desk charges when nothing else is configured.
const DefaultFinePerDay = 50

// NewMemStore creates an empty in-memory store.
func NewMemStore(t testing.TB, options ...memengine.Option) *memengine.Store {
	t.Helper()

	store, err := memengine.NewStore(options...)
	require.NoError(t, err)

	return store
}

// GivenBook provisions a book with the given number of copies, all of them available.
func GivenBook(t testing.TB, ctx context.Context, store ledger.Store, title string, copies int) ledger.Book {
	t.Helper()

	book := ledger.Book{
		ID:             uuid.NewString(),
		Title:          title,
		Author:         "Ursula K. Le Guin",
		AvailableStock: copies,
		TotalCopies:    copies,
	}

	require.NoError(t, store.PutBook(ctx, book))

	return book
}

// GivenBorrowedLoan lends a copy of the book through the borrow handler and returns the new loan id.
func GivenBorrowedLoan(
	t testing.TB,
	ctx context.Context,
	store ledger.Store,
	bookID ledger.BookID,
	borrowedAt time.Time,
	dueDate time.Time,
) ledger.LoanID {

	t.Helper()

	command := borrowbook.BuildCommand(
		uuid.New(),
		bookID,
		borrowbook.Borrower{Name: "Ged Sparrowhawk", Email: "ged@roke.example"},
		dueDate,
		"",
		borrowedAt,
	)

	result, err := borrowbook.NewCommandHandler(store).Handle(ctx, command)
	require.NoError(t, err)

	return result.LoanID
}

// RequireStock asserts the available stock of a book.
func RequireStock(t testing.TB, ctx context.Context, store ledger.Store, bookID ledger.BookID, expected int) {
	t.Helper()

	book, err := store.GetBook(ctx, bookID)
	require.NoError(t, err)
	require.Equal(t, expected, book.AvailableStock, "available stock of book %s", bookID)
}

// RequireLoan loads a loan that must exist.
func RequireLoan(t testing.TB, ctx context.Context, store ledger.Store, loanID ledger.LoanID) ledger.Loan {
	t.Helper()

	loan, err := store.GetLoan(ctx, loanID)
	require.NoError(t, err)

	return loan
}

package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

func Test_SuccessDecision(t *testing.T) {
	// arrange
	event := core.BuildBookCopyReturned("loan-1", "book-1", decimal.Zero, false, nil, time.Now())

	// act
	result := core.SuccessDecision(event)

	// assert
	assert.True(t, result.HasEventToAppend())
	assert.NoError(t, result.HasError())
	assert.Equal(t, event, result.Event)
}

func Test_RejectedDecision(t *testing.T) {
	// arrange
	rejection := ledger.Reject(ledger.RejectionConflict, ledger.ErrBookNotAvailable)

	// act
	result := core.RejectedDecision(rejection)

	// assert
	assert.False(t, result.HasEventToAppend())
	assert.Nil(t, result.Event)
	assert.ErrorIs(t, result.HasError(), ledger.ErrBookNotAvailable)

	var asRejection ledger.Rejection
	assert.True(t, errors.As(result.HasError(), &asRejection))
	assert.Equal(t, ledger.RejectionConflict, asRejection.Kind)
}

func Test_BookCopyLent_ToLoan(t *testing.T) {
	// arrange
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	due := now.Add(7 * ledger.Day)
	book := ledger.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert", AvailableStock: 2, TotalCopies: 2}

	// act
	event := core.BuildBookCopyLent("loan-1", book, "Anna", "anna@example.org", "", "first loan", due, now)
	loan := event.ToLoan()

	// assert
	assert.Equal(t, core.BookCopyLentEntryType, event.IsEntryType())
	assert.Equal(t, ledger.LoanID("loan-1"), event.ForLoan())
	assert.Equal(t, ledger.BookID("book-1"), event.ForBook())
	assert.Equal(t, ledger.LoanStatusBorrowed, loan.Status)
	assert.Equal(t, "Dune", loan.BookTitle)
	assert.Equal(t, "Frank Herbert", loan.BookAuthor)
	assert.True(t, loan.Fine.IsZero())
	assert.True(t, now.Equal(loan.BorrowDate))
	assert.True(t, due.Equal(loan.DueDate))
}

func Test_BookCopyReturned_ToLoanUpdate(t *testing.T) {
	// arrange
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	notes := "cover damaged"

	// act
	update := core.BuildBookCopyReturned("loan-1", "book-1", decimal.NewFromInt(150), true, &notes, now).ToLoanUpdate()

	// assert
	assert.Equal(t, ledger.LoanStatusReturned, update.Status)
	assert.True(t, now.Equal(update.ReturnDate))
	assert.True(t, update.Fine.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, &notes, update.Notes)
	assert.ElementsMatch(t, ledger.OpenLoanStatuses(), update.OnlyIfStatusIn)
}

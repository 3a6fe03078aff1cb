package core

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// BookCopyReturnedEntryType is the event type identifier.
const BookCopyReturnedEntryType = "BookCopyReturned"

// BookCopyReturned represents when a borrower brings a copy back.
// Fine is the amount frozen on the loan at return time.
type BookCopyReturned struct {
	EntryType    EntryTypeString
	LoanID       ledger.LoanID
	BookID       ledger.BookID
	Fine         decimal.Decimal
	FineOverride bool
	Notes        *string
	OccurredAt   OccurredAt
}

// BuildBookCopyReturned creates a new BookCopyReturned event.
func BuildBookCopyReturned(
	loanID ledger.LoanID,
	bookID ledger.BookID,
	fine decimal.Decimal,
	fineOverride bool,
	notes *string,
	occurredAt time.Time,
) BookCopyReturned {

	return BookCopyReturned{
		EntryType:    BookCopyReturnedEntryType,
		LoanID:       loanID,
		BookID:       bookID,
		Fine:         fine,
		FineOverride: fineOverride,
		Notes:        notes,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

// IsEntryType returns the event type identifier.
func (e BookCopyReturned) IsEntryType() string {
	return BookCopyReturnedEntryType
}

// HasOccurredAt returns when this event occurred.
func (e BookCopyReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ForLoan returns the id of the returned loan.
func (e BookCopyReturned) ForLoan() ledger.LoanID {
	return e.LoanID
}

// ForBook returns the id of the returned book.
func (e BookCopyReturned) ForBook() ledger.BookID {
	return e.BookID
}

// ToLoanUpdate renders the event as the conditional loan update that closes the loan.
func (e BookCopyReturned) ToLoanUpdate() ledger.LoanUpdate {
	return ledger.MarkReturned(e.OccurredAt, e.Fine, e.Notes)
}

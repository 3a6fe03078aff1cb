package core

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// BookCopyLentEntryType is the event type identifier.
const BookCopyLentEntryType = "BookCopyLent"

// BookCopyLent represents when a copy of a book is handed to a borrower.
type BookCopyLent struct {
	EntryType     EntryTypeString
	LoanID        ledger.LoanID
	BookID        ledger.BookID
	BookTitle     string
	BookAuthor    string
	BorrowerName  string
	BorrowerEmail string
	BorrowerPhone string
	Notes         string
	DueDate       time.Time
	OccurredAt    OccurredAt
}

// BuildBookCopyLent creates a new BookCopyLent event.
// Title and author are copied from the book as it is at this instant.
func BuildBookCopyLent(
	loanID ledger.LoanID,
	book ledger.Book,
	borrowerName string,
	borrowerEmail string,
	borrowerPhone string,
	notes string,
	dueDate time.Time,
	occurredAt time.Time,
) BookCopyLent {

	return BookCopyLent{
		EntryType:     BookCopyLentEntryType,
		LoanID:        loanID,
		BookID:        book.ID,
		BookTitle:     book.Title,
		BookAuthor:    book.Author,
		BorrowerName:  borrowerName,
		BorrowerEmail: borrowerEmail,
		BorrowerPhone: borrowerPhone,
		Notes:         notes,
		DueDate:       ToOccurredAt(dueDate),
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEntryType returns the event type identifier.
func (e BookCopyLent) IsEntryType() string {
	return BookCopyLentEntryType
}

// HasOccurredAt returns when this event occurred.
func (e BookCopyLent) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ForLoan returns the id of the new loan.
func (e BookCopyLent) ForLoan() ledger.LoanID {
	return e.LoanID
}

// ForBook returns the id of the lent book.
func (e BookCopyLent) ForBook() ledger.BookID {
	return e.BookID
}

// ToLoan renders the event as the loan record it opens: status borrowed, no fine yet.
func (e BookCopyLent) ToLoan() ledger.Loan {
	return ledger.Loan{
		ID:            e.LoanID,
		BookID:        e.BookID,
		BorrowerName:  e.BorrowerName,
		BorrowerEmail: e.BorrowerEmail,
		BorrowerPhone: e.BorrowerPhone,
		Notes:         e.Notes,
		BookTitle:     e.BookTitle,
		BookAuthor:    e.BookAuthor,
		BorrowDate:    e.OccurredAt,
		DueDate:       e.DueDate,
		Status:        ledger.LoanStatusBorrowed,
	}
}

package borrowbook

import (
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

// Validate checks the command fields before anything is read from the store.
// The checks run in order and the first violation wins:
//
//	ERROR: "missing required fields" if borrower name, borrower email, book id or due date is empty
//	ERROR: "invalid email format" if the email has no address shape
//	ERROR: "due date must be in the future" if the due date is not strictly after the request time
func Validate(command Command) error {
	if core.IsBlank(command.Borrower.Name) ||
		core.IsBlank(command.Borrower.Email) ||
		core.IsBlank(command.BookID) ||
		command.DueDate.IsZero() {

		return ledger.Reject(ledger.RejectionValidation, ledger.ErrMissingRequiredFields)
	}

	if !core.IsWellFormedEmail(command.Borrower.Email) {
		return ledger.Reject(ledger.RejectionValidation, ledger.ErrInvalidEmail)
	}

	if !command.DueDate.After(command.OccurredAt) {
		return ledger.Reject(ledger.RejectionValidation, ledger.ErrDueDateNotInFuture)
	}

	return nil
}

// Decide implements the business rules for lending a copy of the locked book.
// This is a pure function: it takes the book as read inside the transaction and the command.
//
// Business Rules:
//
//	GIVEN: A valid BorrowBook command and the book it names
//	WHEN:  the book exists and has a copy available
//	THEN:  BookCopyLent is decided, carrying the book's title and author as they are now
//	ERROR: "book is not available for borrowing" if the book does not exist (reason ErrBookNotFound)
//	ERROR: "book is not available for borrowing" if no copy is available
func Decide(command Command, book ledger.Book, bookFound bool) core.DecisionResult {
	if !bookFound {
		return core.RejectedDecision(
			ledger.RejectWithMessage(ledger.RejectionConflict, ledger.ErrBookNotFound, ledger.ErrBookNotAvailable.Error()),
		)
	}

	if !book.HasStock() {
		return core.RejectedDecision(ledger.Reject(ledger.RejectionConflict, ledger.ErrBookNotAvailable))
	}

	return core.SuccessDecision(
		core.BuildBookCopyLent(
			command.LoanID.String(),
			book,
			command.Borrower.Name,
			command.Borrower.Email,
			command.Borrower.Phone,
			command.Notes,
			command.DueDate,
			command.OccurredAt,
		),
	)
}

package returnbook

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

// Validate checks the command fields before anything is read from the store.
//
//	ERROR: "valid borrow ID is required" if the loan id is empty or not a UUID
//	ERROR: "fine must not be negative" if a fine override is below zero
func Validate(command Command) error {
	if _, err := uuid.Parse(command.LoanID); err != nil {
		return ledger.Reject(ledger.RejectionValidation, ledger.ErrMissingLoanID)
	}

	if command.FineOverride != nil && command.FineOverride.IsNegative() {
		return ledger.Reject(ledger.RejectionValidation, ledger.ErrNegativeFineOverride)
	}

	return nil
}

// Decide implements the business rules for returning a loan.
// This is a pure function: it takes the loan as read inside the transaction and the command.
//
// Business Rules:
//
//	GIVEN: A valid ReturnBook command and the loan it names
//	WHEN:  the loan exists and is still open
//	THEN:  BookCopyReturned is decided with the override fine, or else the fine accrued so far
//	ERROR: "borrow record not found" if the loan does not exist
//	ERROR: "book has already been returned" if the loan is returned (returning twice would add a copy twice)
func Decide(command Command, loan ledger.Loan, loanFound bool) core.DecisionResult {
	if !loanFound {
		return core.RejectedDecision(ledger.Reject(ledger.RejectionConflict, ledger.ErrLoanNotFound))
	}

	if loan.IsReturned() {
		return core.RejectedDecision(ledger.Reject(ledger.RejectionConflict, ledger.ErrLoanAlreadyReturned))
	}

	fine := loan.Fine
	if command.FineOverride != nil {
		fine = *command.FineOverride
	}

	return core.SuccessDecision(
		core.BuildBookCopyReturned(
			loan.ID,
			loan.BookID,
			fine,
			command.FineOverride != nil,
			command.Notes,
			command.OccurredAt,
		),
	)
}

package recalculateoverdue

import (
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Validate checks the command before any loan is read.
//
//	ERROR: "fine per day must not be negative" if the rate is below zero
func Validate(command Command) error {
	return ledger.ValidateFinePerDay(command.FinePerDay)
}

// Recalculate computes the sweep's update for one open loan.
//
// The result depends only on the due date, the sweep instant and the rate, so recalculating the same
// loan twice at the same instant writes the same values, and a later instant never yields a lower fine.
func Recalculate(command Command, loan ledger.Loan) ledger.LoanUpdate {
	daysOverdue := ledger.DaysOverdue(loan.DueDate, command.OccurredAt)

	return ledger.MarkOverdue(
		command.OccurredAt,
		daysOverdue,
		ledger.AccruedFine(daysOverdue, command.FinePerDay),
	)
}

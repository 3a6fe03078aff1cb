package overdueloans

import (
	"slices"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Project implements the query logic for the overdue list.
// This is a pure function with no side effects.
//
// Query Logic:
//
//	GIVEN: The open loans with a due date before the query instant
//	WHEN:  OverdueLoans query is executed
//	THEN:  OverdueLoans struct is returned, ordered by due date ascending
//	INCLUDES: Loans that are borrowed or overdue and due strictly before AsOf
//	EXCLUDES: Returned loans and loans not due yet, whatever their stored status says
func Project(loans ledger.Loans, query Query) OverdueLoans {
	overdue := make([]OverdueLoan, 0, len(loans))

	for _, loan := range loans {
		if !loan.IsOverdueAt(query.AsOf) {
			continue
		}

		overdue = append(overdue, OverdueLoan{
			Loan:        loan,
			DaysOverdue: ledger.DaysOverdue(loan.DueDate, query.AsOf),
		})
	}

	slices.SortStableFunc(overdue, func(a, b OverdueLoan) int {
		return a.DueDate.Compare(b.DueDate)
	})

	return OverdueLoans{
		Loans: overdue,
		Count: len(overdue),
		AsOf:  query.AsOf,
	}
}

package overdueloans

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// OverdueLoan is an open loan past its due date. DaysOverdue is counted up to the query instant.
type OverdueLoan struct {
	ledger.Loan
	DaysOverdue int
}

// OverdueLoans represents the query result, oldest due date first.
type OverdueLoans struct {
	Loans []OverdueLoan
	Count int
	AsOf  time.Time
}

package loansearch

import (
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Loans represents the query result. Count is the number of loans returned, at most Limit.
type Loans struct {
	Loans ledger.Loans
	Count int
	Limit int
}

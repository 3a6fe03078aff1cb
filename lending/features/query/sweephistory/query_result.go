package sweephistory

import (
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// SweepHistory represents the query result.
type SweepHistory struct {
	Runs  ledger.SweepRuns
	Count int
}

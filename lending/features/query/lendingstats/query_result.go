package lendingstats

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Stats represents the query result.
type Stats struct {
	ledger.LendingStats
	AsOf time.Time
}

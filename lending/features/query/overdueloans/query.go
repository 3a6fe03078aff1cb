package overdueloans

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

const (
	queryType = "OverdueLoans"
)

// Query represents the input for listing the loans overdue at AsOf.
type Query struct {
	AsOf time.Time
}

// BuildQuery creates a new Query for the given instant, normalized like the stored loan timestamps.
func BuildQuery(asOf time.Time) Query {
	return Query{AsOf: core.ToOccurredAt(asOf)}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

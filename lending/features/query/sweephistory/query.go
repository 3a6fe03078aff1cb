package sweephistory

import (
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	queryType = "SweepHistory"
)

// Query represents the input for listing the most recent sweep runs.
type Query struct {
	Limit int
}

// BuildQuery creates a new Query. The limit is normalized with ledger.NormalizeQueryLimit.
func BuildQuery(limit int) Query {
	return Query{Limit: ledger.NormalizeQueryLimit(limit)}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

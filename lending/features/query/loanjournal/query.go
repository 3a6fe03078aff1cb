package loanjournal

import (
	"strings"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	queryType = "LoanJournal"
)

// Query represents the input for reading the journal of one loan.
type Query struct {
	LoanID ledger.LoanID
}

// BuildQuery creates a new Query for the given loan.
func BuildQuery(loanID ledger.LoanID) Query {
	return Query{LoanID: strings.TrimSpace(loanID)}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

package loansearch

import (
	"strings"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	queryType = "LoanSearch"
)

// Query represents the input for a loan search. Empty fields do not restrict the result.
type Query struct {
	Search        string
	Statuses      []ledger.LoanStatus
	BookID        ledger.BookID
	BorrowerEmail string
	Limit         int
}

// BuildQuery creates a new Query. The limit is normalized with ledger.NormalizeQueryLimit.
func BuildQuery(search string, limit int, statuses ...ledger.LoanStatus) Query {
	return Query{
		Search:   strings.TrimSpace(search),
		Statuses: statuses,
		Limit:    ledger.NormalizeQueryLimit(limit),
	}
}

// ForBook restricts the query to the loans of one book.
func (q Query) ForBook(bookID ledger.BookID) Query {
	q.BookID = strings.TrimSpace(bookID)
	return q
}

// ForBorrowerEmail restricts the query to the loans of one borrower.
func (q Query) ForBorrowerEmail(email string) Query {
	q.BorrowerEmail = strings.TrimSpace(email)
	return q
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// Filter translates the query into the store's loan filter.
func (q Query) Filter() ledger.LoanFilter {
	return ledger.BuildLoanFilter().
		Searching(q.Search).
		WithStatusIn(q.Statuses...).
		ForBook(q.BookID).
		ForBorrowerEmail(q.BorrowerEmail).
		Finalize()
}

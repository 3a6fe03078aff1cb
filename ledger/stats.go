package ledger

import (
	"github.com/shopspring/decimal"
)

// LendingStats are the counters of the lending dashboard.
//
// OverdueLoans counts open loans with a due date before the query instant,
// independent of whether a sweep already labeled them overdue.
type LendingStats struct {
	TotalBooks      int
	AvailableCopies int
	TotalLoans      int
	OpenLoans       int
	OverdueLoans    int
	TotalFines      decimal.Decimal
}

// StockDrift describes a book whose stock does not add up with its open loans.
//
// For a consistent book AvailableStock + OpenLoans == TotalCopies.
type StockDrift struct {
	BookID         BookID
	AvailableStock int
	OpenLoans      int
	TotalCopies    int
}

// ExpectedStock is the stock the book should have given its open loans.
func (d StockDrift) ExpectedStock() int {
	return d.TotalCopies - d.OpenLoans
}

// Delta is the stock correction that repairs the drift.
func (d StockDrift) Delta() int {
	return d.ExpectedStock() - d.AvailableStock
}

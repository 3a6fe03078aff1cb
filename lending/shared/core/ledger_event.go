package core

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// LedgerEvents is a slice of LedgerEvent instances.
type LedgerEvents = []LedgerEvent

// LedgerEvent represents a business event that is journaled for a loan.
type LedgerEvent interface {
	// IsEntryType returns the string identifier for this event type.
	IsEntryType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time

	// ForLoan returns the loan the event belongs to.
	ForLoan() ledger.LoanID

	// ForBook returns the book whose stock the event changed.
	ForBook() ledger.BookID
}

package loanjournal

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
)

// JournalEntry is one journal record with its decoded event.
type JournalEntry struct {
	SequenceNumber uint
	EntryType      string
	OccurredAt     time.Time
	Event          core.LedgerEvent
	Metadata       shell.EntryMetadata
}

// Journal represents the query result in append order. An unknown loan has an empty journal.
type Journal struct {
	LoanID  ledger.LoanID
	Entries []JournalEntry
	Count   int
}

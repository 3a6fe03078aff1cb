package ledger

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// LedgerEntries is an alias type for a slice of LedgerEntry.
type LedgerEntries = []LedgerEntry

// LedgerEntry is an append-only journal record that a borrow or return writes in the same
// transaction as its loan and stock changes.
//
// It is built on scalars so the journal stays agnostic of the entry payload types in client code.
// SequenceNumber is assigned by the store and is zero before the entry is appended.
//
// While its properties are exported, it should only be constructed with BuildLedgerEntry.
type LedgerEntry struct {
	SequenceNumber uint
	EntryType      string
	LoanID         LoanID
	BookID         BookID
	OccurredAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
}

// BuildLedgerEntry is a factory method for LedgerEntry.
//
// Returns an error if payloadJSON or metadataJSON are not valid JSON.
func BuildLedgerEntry(
	entryType string,
	loanID LoanID,
	bookID BookID,
	occurredAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (LedgerEntry, error) {

	if !jsoniter.Valid(payloadJSON) {
		return LedgerEntry{}, ErrInvalidPayloadJSON
	}

	if !jsoniter.Valid(metadataJSON) {
		return LedgerEntry{}, ErrInvalidMetadataJSON
	}

	return LedgerEntry{
		EntryType:    entryType,
		LoanID:       loanID,
		BookID:       bookID,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

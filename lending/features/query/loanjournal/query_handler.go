package loanjournal

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	QueryLedgerEntries(ctx context.Context, loanID ledger.LoanID) (ledger.LedgerEntries, error)
}

// QueryHandler reads and decodes loan journals.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler with the provided Store dependency.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{
		store: store,
	}
}

// Handle executes the query: Query -> Unmarshal.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Journal, error) {
	entries, err := h.store.QueryLedgerEntries(ledger.WithEventualConsistency(ctx), query.LoanID)
	if err != nil {
		return Journal{}, err
	}

	journal := Journal{
		LoanID:  query.LoanID,
		Entries: make([]JournalEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		event, mapErr := shell.LedgerEventFrom(entry)
		if mapErr != nil {
			return Journal{}, mapErr
		}

		metadata, mapErr := shell.EntryMetadataFrom(entry)
		if mapErr != nil {
			return Journal{}, mapErr
		}

		journal.Entries = append(journal.Entries, JournalEntry{
			SequenceNumber: entry.SequenceNumber,
			EntryType:      entry.EntryType,
			OccurredAt:     entry.OccurredAt,
			Event:          event,
			Metadata:       metadata,
		})
	}

	journal.Count = len(journal.Entries)

	return journal, nil
}

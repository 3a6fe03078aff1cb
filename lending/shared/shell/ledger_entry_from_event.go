package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

var (
	// ErrMappingToLedgerEntryFailedForEvent is returned when ledger event serialization fails.
	ErrMappingToLedgerEntryFailedForEvent = errors.New("mapping to ledger entry failed for ledger event")

	// ErrMappingToLedgerEntryFailedForMetadata is returned when metadata serialization fails.
	ErrMappingToLedgerEntryFailedForMetadata = errors.New("mapping to ledger entry failed for metadata")
)

// LedgerEntryFrom converts a LedgerEvent and EntryMetadata to a LedgerEntry.
func LedgerEntryFrom(event core.LedgerEvent, metadata EntryMetadata) (ledger.LedgerEntry, error) {
	payloadJSON, err := jsoniter.ConfigFastest.Marshal(event)
	if err != nil {
		return ledger.LedgerEntry{}, errors.Join(ErrMappingToLedgerEntryFailedForEvent, err)
	}

	metadataJSON, err := jsoniter.ConfigFastest.Marshal(metadata)
	if err != nil {
		return ledger.LedgerEntry{}, errors.Join(ErrMappingToLedgerEntryFailedForMetadata, err)
	}

	entry, err := ledger.BuildLedgerEntry(
		event.IsEntryType(),
		event.ForLoan(),
		event.ForBook(),
		event.HasOccurredAt(),
		payloadJSON,
		metadataJSON,
	)
	if err != nil {
		return ledger.LedgerEntry{}, errors.Join(ErrMappingToLedgerEntryFailedForEvent, err)
	}

	return entry, nil
}

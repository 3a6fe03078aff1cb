package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

var (
	// ErrMappingToLedgerEventFailed is returned when ledger event conversion fails.
	ErrMappingToLedgerEventFailed = errors.New("mapping to ledger event failed")

	// ErrMappingToLedgerEventUnknownEntryType is returned for unrecognized entry types.
	ErrMappingToLedgerEventUnknownEntryType = errors.New("unknown entry type")
)

// LedgerEventsFrom converts multiple LedgerEntries to LedgerEvents.
func LedgerEventsFrom(entries ledger.LedgerEntries) (core.LedgerEvents, error) {
	events := make(core.LedgerEvents, 0, len(entries))

	for _, entry := range entries {
		event, err := LedgerEventFrom(entry)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, nil
}

// LedgerEventFrom converts a LedgerEntry to its corresponding LedgerEvent.
func LedgerEventFrom(entry ledger.LedgerEntry) (core.LedgerEvent, error) {
	switch entry.EntryType {
	case core.BookCopyLentEntryType:
		return unmarshalLedgerEvent[core.BookCopyLent](entry.PayloadJSON)

	case core.BookCopyReturnedEntryType:
		return unmarshalLedgerEvent[core.BookCopyReturned](entry.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToLedgerEventFailed, ErrMappingToLedgerEventUnknownEntryType)
}

func unmarshalLedgerEvent[E core.LedgerEvent](payloadJSON []byte) (core.LedgerEvent, error) {
	payload := new(E)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToLedgerEventFailed, err)
	}

	return *payload, nil
}

package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// ErrMappingToEntryMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEntryMetadataFailed = errors.New("mapping to entry metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the message that caused this entry.
type CausationID = string

// CorrelationID represents the ID correlating related entries.
type CorrelationID = string

// EntryMetadata contains journal entry tracking information.
type EntryMetadata struct {
	MessageID     MessageID
	CausationID   CausationID
	CorrelationID CorrelationID
}

// BuildEntryMetadata creates EntryMetadata from UUID values.
func BuildEntryMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EntryMetadata {
	return EntryMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// BuildInitiatingEntryMetadata creates EntryMetadata for an entry that starts a new causal chain:
// message, causation and correlation ids are all the same fresh id.
func BuildInitiatingEntryMetadata() EntryMetadata {
	messageID := uuid.New()
	return BuildEntryMetadata(messageID, messageID, messageID)
}

// EntryMetadataFrom extracts EntryMetadata from a LedgerEntry.
func EntryMetadataFrom(entry ledger.LedgerEntry) (EntryMetadata, error) {
	metadata := new(EntryMetadata)

	err := jsoniter.ConfigFastest.Unmarshal(entry.MetadataJSON, metadata)
	if err != nil {
		return EntryMetadata{}, errors.Join(ErrMappingToEntryMetadataFailed, err)
	}

	return *metadata, nil
}

package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildLedgerEntry_ErrorCases(t *testing.T) {
	validPayloadJSON := []byte(`{"key": "value"}`)
	validMetadataJSON := []byte(`{"meta": "data"}`)

	tests := []struct {
		name         string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{
			name:         "invalid payload JSON",
			payloadJSON:  []byte(`{"invalid": json}`),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "invalid metadata JSON",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(`{"invalid": json}`),
			expectedErr:  ErrInvalidMetadataJSON,
		},
		{
			name:         "empty payload JSON",
			payloadJSON:  []byte(``),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "empty metadata JSON",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(``),
			expectedErr:  ErrInvalidMetadataJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildLedgerEntry("BookCopyLent", "loan-1", "book-1", time.Now(), tt.payloadJSON, tt.metadataJSON)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_BuildLedgerEntry_Success(t *testing.T) {
	// arrange
	occurredAt := time.Unix(0, 0).UTC()

	// act
	entry, err := BuildLedgerEntry(
		"BookCopyReturned",
		"loan-1",
		"book-1",
		occurredAt,
		[]byte(`{"LoanID":"loan-1"}`),
		[]byte(`{}`),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "BookCopyReturned", entry.EntryType)
	assert.Equal(t, "loan-1", entry.LoanID)
	assert.Equal(t, "book-1", entry.BookID)
	assert.Equal(t, occurredAt, entry.OccurredAt)
	assert.Zero(t, entry.SequenceNumber)
}

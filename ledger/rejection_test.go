package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Rejection_IsDetectableThroughWrapping(t *testing.T) {
	// arrange
	err := fmt.Errorf("borrow: %w", Reject(RejectionConflict, ErrBookNotAvailable))

	// act
	rejection, ok := AsRejection(err)

	// assert
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, rejection.Kind)
	assert.Equal(t, "book is not available for borrowing", rejection.Message)
	assert.ErrorIs(t, err, ErrBookNotAvailable)
	assert.True(t, IsRejection(err))
}

func Test_RejectWithMessage(t *testing.T) {
	rejection := RejectWithMessage(RejectionConflict, ErrBookNotFound, "Book is not available for borrowing")

	assert.Equal(t, "Book is not available for borrowing", rejection.Error())
	assert.ErrorIs(t, rejection, ErrBookNotFound)
}

func Test_IsRejection_InfrastructureError(t *testing.T) {
	err := errors.Join(ErrQueryingFailed, errors.New("connection refused"))

	assert.False(t, IsRejection(err))
}

func Test_RejectionKind_String(t *testing.T) {
	assert.Equal(t, "validation", RejectionValidation.String())
	assert.Equal(t, "conflict", RejectionConflict.String())
	assert.Equal(t, "unknown", RejectionKind(0).String())
}

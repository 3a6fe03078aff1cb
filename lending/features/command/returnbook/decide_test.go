package returnbook_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/returnbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

func Test_Validate(t *testing.T) {
	negative := decimal.NewFromInt(-1)
	zero := decimal.Zero

	testCases := []struct {
		name     string
		loanID   ledger.LoanID
		fine     *decimal.Decimal
		expected error
	}{
		{name: "empty id", loanID: "", expected: ledger.ErrMissingLoanID},
		{name: "malformed id", loanID: "64f1c2e9a1b2c3d4e5f60718", expected: ledger.ErrMissingLoanID},
		{name: "negative fine", loanID: uuid.NewString(), fine: &negative, expected: ledger.ErrNegativeFineOverride},
		{name: "zero fine", loanID: uuid.NewString(), fine: &zero, expected: nil},
		{name: "no fine", loanID: uuid.NewString(), expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := returnbook.Validate(returnbook.BuildCommand(tc.loanID, tc.fine, nil, time.Now()))

			// assert
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.expected)
			assert.True(t, ledger.IsRejection(err))
		})
	}
}

func Test_Decide_KeepsAccruedFine(t *testing.T) {
	// arrange
	loan := openLoan()
	loan.Fine = decimal.NewFromInt(150)
	loan.Status = ledger.LoanStatusOverdue

	// act
	result := returnbook.Decide(returnbook.BuildCommand(loan.ID, nil, nil, time.Now()), loan, true)

	// assert
	require.NoError(t, result.HasError())
	event, ok := result.Event.(core.BookCopyReturned)
	require.True(t, ok)
	assert.True(t, event.Fine.Equal(decimal.NewFromInt(150)), "a return never resets the accrued fine")
	assert.False(t, event.FineOverride)
	assert.Equal(t, loan.BookID, event.BookID)
}

func Test_Decide_AppliesFineOverride(t *testing.T) {
	// arrange
	loan := openLoan()
	loan.Fine = decimal.NewFromInt(150)
	override := decimal.NewFromInt(20)
	notes := "waived partly"

	// act
	result := returnbook.Decide(returnbook.BuildCommand(loan.ID, &override, &notes, time.Now()), loan, true)

	// assert
	require.NoError(t, result.HasError())
	event := result.Event.(core.BookCopyReturned)
	assert.True(t, event.Fine.Equal(override))
	assert.True(t, event.FineOverride)
	assert.Equal(t, &notes, event.Notes)
}

func Test_Decide_Rejected(t *testing.T) {
	returned := openLoan()
	returned.Status = ledger.LoanStatusReturned

	testCases := []struct {
		name     string
		loan     ledger.Loan
		found    bool
		expected error
	}{
		{name: "unknown loan", loan: ledger.Loan{}, found: false, expected: ledger.ErrLoanNotFound},
		{name: "already returned", loan: returned, found: true, expected: ledger.ErrLoanAlreadyReturned},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := returnbook.Decide(returnbook.BuildCommand(uuid.NewString(), nil, nil, time.Now()), tc.loan, tc.found)

			// assert
			assert.False(t, result.HasEventToAppend())
			assert.ErrorIs(t, result.HasError(), tc.expected)

			rejection, ok := ledger.AsRejection(result.HasError())
			require.True(t, ok)
			assert.Equal(t, ledger.RejectionConflict, rejection.Kind)
		})
	}
}

func openLoan() ledger.Loan {
	now := time.Now()

	return ledger.Loan{
		ID:         uuid.NewString(),
		BookID:     uuid.NewString(),
		BorrowDate: now.Add(-10 * ledger.Day),
		DueDate:    now.Add(-3 * ledger.Day),
		Status:     ledger.LoanStatusBorrowed,
		Fine:       decimal.Zero,
	}
}

package recalculateoverdue_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/recalculateoverdue"
)

func Test_Validate(t *testing.T) {
	// act
	negative := recalculateoverdue.Validate(recalculateoverdue.BuildCommand(decimal.NewFromInt(-1), "", time.Now()))
	zero := recalculateoverdue.Validate(recalculateoverdue.BuildCommand(decimal.Zero, "", time.Now()))

	// assert
	assert.ErrorIs(t, negative, ledger.ErrNegativeFinePerDay)
	assert.True(t, ledger.IsRejection(negative))
	assert.NoError(t, zero)
}

func Test_BuildCommand_DefaultsToManualTrigger(t *testing.T) {
	// act
	command := recalculateoverdue.BuildCommand(decimal.NewFromInt(50), "", time.Now())

	// assert
	assert.Equal(t, ledger.SweepTriggerManual, command.Trigger)
}

func Test_Recalculate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	rate := decimal.NewFromInt(50)

	testCases := []struct {
		name         string
		dueDate      time.Time
		expectedDays int
		expectedFine decimal.Decimal
	}{
		{name: "three whole days", dueDate: now.Add(-3 * ledger.Day), expectedDays: 3, expectedFine: decimal.NewFromInt(150)},
		{name: "one minute counts as a day", dueDate: now.Add(-time.Minute), expectedDays: 1, expectedFine: decimal.NewFromInt(50)},
		{name: "partial day rounds up", dueDate: now.Add(-2*ledger.Day - time.Hour), expectedDays: 3, expectedFine: decimal.NewFromInt(150)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			command := recalculateoverdue.BuildCommand(rate, ledger.SweepTriggerScheduled, now)
			loan := ledger.Loan{ID: "loan", DueDate: tc.dueDate, Status: ledger.LoanStatusBorrowed}

			// act
			update := recalculateoverdue.Recalculate(command, loan)

			// assert
			assert.Equal(t, ledger.LoanStatusOverdue, update.Status)
			require.NotNil(t, update.DaysOverdue)
			assert.Equal(t, tc.expectedDays, *update.DaysOverdue)
			require.NotNil(t, update.Fine)
			assert.True(t, tc.expectedFine.Equal(*update.Fine), "fine %s", update.Fine)
			assert.True(t, update.LastRecalculatedAt.Equal(now))
			assert.False(t, update.Allows(ledger.LoanStatusReturned))
		})
	}
}

func Test_Recalculate_IsMonotonicInTime(t *testing.T) {
	// arrange
	dueDate := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	loan := ledger.Loan{DueDate: dueDate, Status: ledger.LoanStatusOverdue}
	rate := decimal.RequireFromString("0.25")
	previous := decimal.Zero

	for hours := 1; hours < 24*10; hours += 5 {
		// act
		update := recalculateoverdue.Recalculate(
			recalculateoverdue.BuildCommand(rate, "", dueDate.Add(time.Duration(hours)*time.Hour)),
			loan,
		)

		// assert
		assert.True(t, update.Fine.GreaterThanOrEqual(previous), "fine went down after %d hours", hours)
		previous = *update.Fine
	}
}

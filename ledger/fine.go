package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Day is the unit in which overdue time is counted.
const Day = 24 * time.Hour

// DaysOverdue returns ceil((asOf - dueDate) / Day), or 0 if dueDate is not strictly before asOf.
func DaysOverdue(dueDate, asOf time.Time) int {
	if !dueDate.Before(asOf) {
		return 0
	}

	elapsed := asOf.Sub(dueDate)
	days := elapsed / Day

	if elapsed%Day != 0 {
		days++
	}

	return int(days)
}

// AccruedFine returns daysOverdue * finePerDay.
func AccruedFine(daysOverdue int, finePerDay decimal.Decimal) decimal.Decimal {
	return finePerDay.Mul(decimal.NewFromInt(int64(daysOverdue)))
}

// ValidateFinePerDay rejects negative rates.
func ValidateFinePerDay(finePerDay decimal.Decimal) error {
	if finePerDay.IsNegative() {
		return Reject(RejectionValidation, ErrNegativeFinePerDay)
	}

	return nil
}

package postgresengine

import (
	"database/sql"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	colID                 = "id"
	colTitle              = "title"
	colAuthor             = "author"
	colAvailableStock     = "available_stock"
	colTotalCopies        = "total_copies"
	colBookID             = "book_id"
	colLoanID             = "loan_id"
	colBorrowerName       = "borrower_name"
	colBorrowerEmail      = "borrower_email"
	colBorrowerPhone      = "borrower_phone"
	colNotes              = "notes"
	colBookTitle          = "book_title"
	colBookAuthor         = "book_author"
	colBorrowDate         = "borrow_date"
	colDueDate            = "due_date"
	colReturnDate         = "return_date"
	colStatus             = "status"
	colFine               = "fine"
	colDaysOverdue        = "days_overdue"
	colLastRecalculatedAt = "last_recalculated_at"
	colSequenceNumber     = "sequence_number"
	colEntryType          = "entry_type"
	colOccurredAt         = "occurred_at"
	colPayload            = "payload"
	colMetadata           = "metadata"
	colRanAt              = "ran_at"
	colUpdatedCount       = "updated_count"
	colFailedCount        = "failed_count"
	colFinePerDay         = "fine_per_day"
	colTriggerType        = "trigger_type"
	castNumeric           = "?::numeric"
	castJsonb             = "?::jsonb"
	fineAsText            = "fine::text"
	finePerDayAsText      = "fine_per_day::text"
	aliasBooks            = "b"
	aliasOpenLoans        = "o"
	aliasOpenLoanCount    = "open_loans"
)

func openStatusValues() []any {
	open := ledger.OpenLoanStatuses()
	values := make([]any, 0, len(open))

	for _, status := range open {
		values = append(values, string(status))
	}

	return values
}

func statusValues(statuses []ledger.LoanStatus) []any {
	values := make([]any, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}

	return values
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t
}

func timeFromNull(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}

	return t.Time.UTC()
}

package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the state of a Loan.
type LoanStatus string

const (
	// LoanStatusBorrowed is the state of a loan right after a successful borrow.
	LoanStatusBorrowed LoanStatus = "borrowed"

	// LoanStatusOverdue is the label the overdue sweep applies to open loans past their due date.
	LoanStatusOverdue LoanStatus = "overdue"

	// LoanStatusReturned is terminal, no transition leaves it.
	LoanStatusReturned LoanStatus = "returned"
)

// OpenLoanStatuses returns the statuses of loans that are not returned yet.
func OpenLoanStatuses() []LoanStatus {
	return []LoanStatus{LoanStatusBorrowed, LoanStatusOverdue}
}

// ParseLoanStatus converts a string into a LoanStatus.
func ParseLoanStatus(s string) (LoanStatus, error) {
	status := LoanStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown loan status %q", s)
	}

	return status, nil
}

// IsValid reports whether s is one of the known statuses.
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusBorrowed, LoanStatusOverdue, LoanStatusReturned:
		return true
	default:
		return false
	}
}

// IsOpen reports whether a loan in this status still holds a copy of the book.
func (s LoanStatus) IsOpen() bool {
	return s == LoanStatusBorrowed || s == LoanStatusOverdue
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
//
// Overdue may be re-applied to an overdue loan, because every sweep rewrites the label.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	switch s {
	case LoanStatusBorrowed:
		return next == LoanStatusOverdue || next == LoanStatusReturned
	case LoanStatusOverdue:
		return next == LoanStatusOverdue || next == LoanStatusReturned
	default:
		return false
	}
}

func (s LoanStatus) String() string {
	return string(s)
}

// Loan is a record of one book copy lent to one borrower.
//
// BookTitle and BookAuthor are a snapshot of the book at borrow time.
// ReturnDate and LastRecalculatedAt are the zero time until they are set.
type Loan struct {
	ID                 LoanID
	BookID             BookID
	BorrowerName       string
	BorrowerEmail      string
	BorrowerPhone      string
	Notes              string
	BookTitle          string
	BookAuthor         string
	BorrowDate         time.Time
	DueDate            time.Time
	ReturnDate         time.Time
	Status             LoanStatus
	Fine               decimal.Decimal
	DaysOverdue        int
	LastRecalculatedAt time.Time
}

// Loans is an alias type for a slice of Loan.
type Loans = []Loan

// IsOpen reports whether the loan is not returned yet.
func (l Loan) IsOpen() bool {
	return l.Status.IsOpen()
}

// IsReturned reports whether the loan reached its terminal state.
func (l Loan) IsReturned() bool {
	return l.Status == LoanStatusReturned
}

// IsOverdueAt reports whether the loan is open and its due date lies strictly before asOf.
func (l Loan) IsOverdueAt(asOf time.Time) bool {
	return l.IsOpen() && l.DueDate.Before(asOf)
}

// LoanUpdate is a partial update of a Loan. Zero values mean "unchanged".
//
// OnlyIfStatusIn makes the update conditional: it matches only while the loan's current status
// is one of the listed statuses. Stores evaluate the condition and the write as one atomic step.
type LoanUpdate struct {
	Status             LoanStatus
	Fine               *decimal.Decimal
	DaysOverdue        *int
	ReturnDate         time.Time
	Notes              *string
	LastRecalculatedAt time.Time
	OnlyIfStatusIn     []LoanStatus
}

// MarkReturned builds the update of the return operation.
// A nil notes pointer keeps the notes recorded at borrow time.
func MarkReturned(returnedAt time.Time, fine decimal.Decimal, notes *string) LoanUpdate {
	return LoanUpdate{
		Status:         LoanStatusReturned,
		Fine:           &fine,
		ReturnDate:     returnedAt,
		Notes:          notes,
		OnlyIfStatusIn: OpenLoanStatuses(),
	}
}

// MarkOverdue builds the update the overdue sweep writes for one loan.
func MarkOverdue(recalculatedAt time.Time, daysOverdue int, fine decimal.Decimal) LoanUpdate {
	return LoanUpdate{
		Status:             LoanStatusOverdue,
		Fine:               &fine,
		DaysOverdue:        &daysOverdue,
		LastRecalculatedAt: recalculatedAt,
		OnlyIfStatusIn:     OpenLoanStatuses(),
	}
}

// IsEmpty reports whether the update would not change any field.
func (u LoanUpdate) IsEmpty() bool {
	return u.Status == "" &&
		u.Fine == nil &&
		u.DaysOverdue == nil &&
		u.ReturnDate.IsZero() &&
		u.Notes == nil &&
		u.LastRecalculatedAt.IsZero()
}

// Allows reports whether the update's status condition holds for the current status.
func (u LoanUpdate) Allows(current LoanStatus) bool {
	if len(u.OnlyIfStatusIn) == 0 {
		return true
	}

	for _, status := range u.OnlyIfStatusIn {
		if status == current {
			return true
		}
	}

	return false
}

// ApplyTo returns a copy of loan with the update applied. It does not check OnlyIfStatusIn.
func (u LoanUpdate) ApplyTo(loan Loan) Loan {
	if u.Status != "" {
		loan.Status = u.Status
	}

	if u.Fine != nil {
		loan.Fine = *u.Fine
	}

	if u.DaysOverdue != nil {
		loan.DaysOverdue = *u.DaysOverdue
	}

	if !u.ReturnDate.IsZero() {
		loan.ReturnDate = u.ReturnDate
	}

	if u.Notes != nil {
		loan.Notes = *u.Notes
	}

	if !u.LastRecalculatedAt.IsZero() {
		loan.LastRecalculatedAt = u.LastRecalculatedAt
	}

	return loan
}

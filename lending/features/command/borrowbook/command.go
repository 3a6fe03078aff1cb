package borrowbook

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

const (
	commandType = "BorrowBook"
)

// Borrower identifies the person taking the book home.
type Borrower struct {
	Name  string
	Email string
	Phone string
}

// Command represents the intent to borrow a copy of a book until DueDate.
type Command struct {
	LoanID     uuid.UUID
	BookID     ledger.BookID
	Borrower   Borrower
	DueDate    time.Time
	Notes      string
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
// Text fields are trimmed and dueDate gets the precision it is stored with. loanID becomes the id of the loan if the borrow succeeds.
func BuildCommand(
	loanID uuid.UUID,
	bookID ledger.BookID,
	borrower Borrower,
	dueDate time.Time,
	notes string,
	occurredAt time.Time,
) Command {

	return Command{
		LoanID: loanID,
		BookID: strings.TrimSpace(bookID),
		Borrower: Borrower{
			Name:  strings.TrimSpace(borrower.Name),
			Email: strings.TrimSpace(borrower.Email),
			Phone: strings.TrimSpace(borrower.Phone),
		},
		DueDate:    core.ToOccurredAt(dueDate),
		Notes:      strings.TrimSpace(notes),
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

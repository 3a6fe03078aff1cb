package returnbook

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent to return the copy lent out with LoanID.
// FineOverride and Notes are optional; nil means "keep what the loan has".
type Command struct {
	LoanID       ledger.LoanID
	FineOverride *decimal.Decimal
	Notes        *string
	OccurredAt   core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID ledger.LoanID, fineOverride *decimal.Decimal, notes *string, occurredAt time.Time) Command {
	return Command{
		LoanID:       strings.TrimSpace(loanID),
		FineOverride: fineOverride,
		Notes:        notes,
		OccurredAt:   core.ToOccurredAt(occurredAt),
	}
}

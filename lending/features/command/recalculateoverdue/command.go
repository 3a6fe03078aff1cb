package recalculateoverdue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

const (
	commandType = "RecalculateOverdue"
)

// Command represents the intent to recalculate all overdue loans as of OccurredAt.
type Command struct {
	FinePerDay decimal.Decimal
	Trigger    ledger.SweepTrigger
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. An empty trigger counts as a manual sweep.
func BuildCommand(finePerDay decimal.Decimal, trigger ledger.SweepTrigger, occurredAt time.Time) Command {
	if trigger == "" {
		trigger = ledger.SweepTriggerManual
	}

	return Command{
		FinePerDay: finePerDay,
		Trigger:    trigger,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

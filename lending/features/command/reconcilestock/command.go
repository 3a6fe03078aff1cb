package reconcilestock

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
)

const (
	commandType = "ReconcileStock"
)

// Command represents the intent to check, and with Repair to correct, the stock of all books.
type Command struct {
	Repair     bool
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(repair bool, occurredAt time.Time) Command {
	return Command{
		Repair:     repair,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

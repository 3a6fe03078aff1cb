package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SweepTrigger tells what started an overdue sweep.
type SweepTrigger string

const (
	// SweepTriggerScheduled marks sweeps started by the scheduler.
	SweepTriggerScheduled SweepTrigger = "scheduled"

	// SweepTriggerManual marks sweeps started by an explicit request.
	SweepTriggerManual SweepTrigger = "manual"
)

// SweepRun is the log record of one overdue recalculation pass.
type SweepRun struct {
	RanAt        time.Time
	UpdatedCount int
	FailedCount  int
	FinePerDay   decimal.Decimal
	Trigger      SweepTrigger
}

// SweepRuns is an alias type for a slice of SweepRun.
type SweepRuns = []SweepRun

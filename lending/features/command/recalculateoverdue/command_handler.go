package recalculateoverdue

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
)

const (
	logMsgLoanRecalculationFailed = "overdue recalculation failed for loan"
	logMsgLoanNoLongerOpen        = "loan was returned during the sweep, skipped"
	logMsgSweepRunNotRecorded     = "sweep run could not be recorded"
	logMsgSweepCompleted          = "overdue sweep completed"

	logAttrLoanID       = "loan_id"
	logAttrTrigger      = "trigger"
	logAttrUpdatedCount = "updated_count"
	logAttrFailedCount  = "failed_count"
	logAttrFinePerDay   = "fine_per_day"
	logAttrError        = "error"
)

// Store defines the interface needed by the CommandHandler.
// Every call is a single atomic statement, a sweep does not need a surrounding transaction.
type Store interface {
	QueryActiveLoans(ctx context.Context, asOf time.Time) (ledger.Loans, error)
	UpdateLoan(ctx context.Context, id ledger.LoanID, update ledger.LoanUpdate) (bool, error)
	RecordSweepRun(ctx context.Context, run ledger.SweepRun) error
}

// Result is the outcome of one sweep.
type Result struct {
	shell.HandlerResult
	UpdatedCount int
	FailedCount  int
	FinePerDay   decimal.Decimal
	RanAt        time.Time
}

// CommandHandler orchestrates the sweep: Validate -> QueryActiveLoans -> (Recalculate -> UpdateLoan) per loan.
type CommandHandler struct {
	store  Store
	logger ledger.Logger
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithLogger sets the logger for per-loan failures and the sweep summary.
func WithLogger(logger ledger.Logger) Option {
	return func(h *CommandHandler) {
		h.logger = logger
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle runs one sweep. It fails only if the command is invalid, the open loans cannot be read,
// or ctx ends while the sweep is running. Failures of single loans are counted in Result.FailedCount.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := Validate(command); err != nil {
		return Result{HandlerResult: shell.NewSingleAttemptResult(err)}, err
	}

	loans, err := h.store.QueryActiveLoans(ctx, command.OccurredAt)
	if err != nil {
		return Result{HandlerResult: shell.NewSingleAttemptResult(err)}, err
	}

	result := Result{
		FinePerDay: command.FinePerDay,
		RanAt:      command.OccurredAt,
	}

	for _, loan := range loans {
		if err = ctx.Err(); err != nil {
			result.HandlerResult = shell.NewSingleAttemptResult(err)
			return result, err
		}

		matched, updateErr := h.store.UpdateLoan(ctx, loan.ID, Recalculate(command, loan))

		switch {
		case updateErr != nil && ctx.Err() != nil:
			result.HandlerResult = shell.NewSingleAttemptResult(ctx.Err())
			return result, ctx.Err()

		case updateErr != nil:
			result.FailedCount++
			h.logWarn(logMsgLoanRecalculationFailed, logAttrLoanID, loan.ID, logAttrError, updateErr.Error())

		case !matched:
			h.logDebug(logMsgLoanNoLongerOpen, logAttrLoanID, loan.ID)

		default:
			result.UpdatedCount++
		}
	}

	h.recordSweepRun(ctx, command, result)

	result.HandlerResult = shell.NewSingleAttemptResult(nil)

	return result, nil
}

func (h CommandHandler) recordSweepRun(ctx context.Context, command Command, result Result) {
	run := ledger.SweepRun{
		RanAt:        result.RanAt,
		UpdatedCount: result.UpdatedCount,
		FailedCount:  result.FailedCount,
		FinePerDay:   result.FinePerDay,
		Trigger:      command.Trigger,
	}

	if err := h.store.RecordSweepRun(ctx, run); err != nil {
		h.logError(logMsgSweepRunNotRecorded, logAttrError, err.Error())
	}

	h.logInfo(
		logMsgSweepCompleted,
		logAttrTrigger, string(command.Trigger),
		logAttrUpdatedCount, result.UpdatedCount,
		logAttrFailedCount, result.FailedCount,
		logAttrFinePerDay, result.FinePerDay.String(),
	)
}

func (h CommandHandler) logDebug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}

func (h CommandHandler) logInfo(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Info(msg, args...)
	}
}

func (h CommandHandler) logWarn(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}

func (h CommandHandler) logError(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Error(msg, args...)
	}
}

package reconcilestock

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
)

const (
	logMsgStockDriftDetected = "stock drift detected"
	logMsgStockRepaired      = "stock repaired"
	logMsgStockRepairFailed  = "stock repair failed"

	logAttrBookID         = "book_id"
	logAttrAvailableStock = "available_stock"
	logAttrOpenLoans      = "open_loans"
	logAttrTotalCopies    = "total_copies"
	logAttrDelta          = "delta"
	logAttrError          = "error"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	QueryStockDrift(ctx context.Context) ([]ledger.StockDrift, error)
	WithinTx(ctx context.Context, fn ledger.TxFunc) error
}

// Result lists the drifts found and, in repair mode, which books were corrected.
type Result struct {
	shell.HandlerResult
	Drifts     []ledger.StockDrift
	Repaired   []ledger.BookID
	Unrepaired []ledger.BookID
}

// CommandHandler orchestrates the reconciliation: QueryStockDrift -> (GetBook -> count open loans -> IncrementStock) per book.
type CommandHandler struct {
	store  Store
	logger ledger.Logger
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithLogger sets the logger for drift findings and repairs.
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

// Handle runs the reconciliation pass. A failing repair leaves the book in Unrepaired and the pass goes on.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	drifts, err := h.store.QueryStockDrift(ctx)
	if err != nil {
		return Result{HandlerResult: shell.NewSingleAttemptResult(err)}, err
	}

	result := Result{
		Drifts:     drifts,
		Repaired:   make([]ledger.BookID, 0),
		Unrepaired: make([]ledger.BookID, 0),
	}

	for _, drift := range drifts {
		h.logWarn(
			logMsgStockDriftDetected,
			logAttrBookID, drift.BookID,
			logAttrAvailableStock, drift.AvailableStock,
			logAttrOpenLoans, drift.OpenLoans,
			logAttrTotalCopies, drift.TotalCopies,
		)

		if !command.Repair {
			continue
		}

		if err = ctx.Err(); err != nil {
			result.HandlerResult = shell.NewSingleAttemptResult(err)
			return result, err
		}

		delta, repairErr := h.repair(ctx, drift.BookID)
		if repairErr != nil {
			result.Unrepaired = append(result.Unrepaired, drift.BookID)
			h.logError(logMsgStockRepairFailed, logAttrBookID, drift.BookID, logAttrError, repairErr.Error())

			continue
		}

		result.Repaired = append(result.Repaired, drift.BookID)
		h.logInfo(logMsgStockRepaired, logAttrBookID, drift.BookID, logAttrDelta, delta)
	}

	result.HandlerResult = shell.NewSingleAttemptResult(nil)

	return result, nil
}

// repair recounts the open loans of a locked book and applies the correction within one transaction.
func (h CommandHandler) repair(ctx context.Context, bookID ledger.BookID) (int, error) {
	var delta int

	err := h.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		book, err := tx.GetBook(ctx, bookID)
		if err != nil {
			return err
		}

		openLoans, err := tx.QueryAll(
			ctx,
			ledger.BuildLoanFilter().ForBook(bookID).WithStatusIn(ledger.OpenLoanStatuses()...).Finalize(),
			ledger.MaxQueryLimit,
		)
		if err != nil {
			return err
		}

		if delta, err = Correction(book, len(openLoans)); err != nil {
			return err
		}

		if delta == 0 {
			return nil
		}

		return tx.IncrementStock(ctx, bookID, delta)
	})

	return delta, err
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

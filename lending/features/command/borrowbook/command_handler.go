package borrowbook

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/core"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
)

// Store defines the interface needed by the CommandHandler for ledger operations.
type Store interface {
	WithinTx(ctx context.Context, fn ledger.TxFunc) error
}

// Result is the outcome of a successful borrow.
type Result struct {
	shell.HandlerResult
	LoanID ledger.LoanID
}

// CommandHandler orchestrates the borrow workflow: Validate -> (GetBook -> Decide -> Write) in one transaction.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
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

// Handle executes the borrow. A business rule violation is returned as a ledger.Rejection and leaves
// both the book and the loans untouched.
//
// Resilience: the transaction is retried with exponential backoff when it was rolled back on a
// concurrency conflict. Nothing else is retried.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := Validate(command); err != nil {
		return Result{HandlerResult: shell.NewSingleAttemptResult(err)}, err
	}

	var loanID ledger.LoanID

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		loanID, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewHandlerResult(retryMetrics)}, err
	}

	return Result{HandlerResult: shell.NewHandlerResult(retryMetrics), LoanID: loanID}, nil
}

// executeCommand contains the transactional part that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (ledger.LoanID, error) {
	var loanID ledger.LoanID

	err := h.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		book, err := tx.GetBook(ctx, command.BookID)
		bookFound := true

		if errors.Is(err, ledger.ErrBookNotFound) {
			bookFound = false
		} else if err != nil {
			return err
		}

		result := Decide(command, book, bookFound)
		if err = result.HasError(); err != nil {
			return err
		}

		event, ok := result.Event.(core.BookCopyLent)
		if !ok {
			return shell.ErrUnexpectedLedgerEvent
		}

		if err = tx.IncrementStock(ctx, event.BookID, -1); err != nil {
			if errors.Is(err, ledger.ErrStockWouldGoNegative) {
				return ledger.Reject(ledger.RejectionConflict, ledger.ErrBookNotAvailable)
			}

			return err
		}

		if loanID, err = tx.InsertLoan(ctx, event.ToLoan()); err != nil {
			return err
		}

		entry, err := shell.LedgerEntryFrom(event, shell.BuildInitiatingEntryMetadata())
		if err != nil {
			return err
		}

		return tx.AppendLedgerEntry(ctx, entry)
	})

	return loanID, err
}

package returnbook

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

// Result is the outcome of a successful return. Returned carries the fine the loan was closed with.
type Result struct {
	shell.HandlerResult
	Returned core.BookCopyReturned
}

// CommandHandler orchestrates the return workflow: Validate -> (GetLoan -> Decide -> Write) in one transaction.
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

// Handle executes the return. A business rule violation is returned as a ledger.Rejection and leaves
// both the loan and the stock untouched.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := Validate(command); err != nil {
		return Result{HandlerResult: shell.NewSingleAttemptResult(err)}, err
	}

	var event core.BookCopyReturned

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		event, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewHandlerResult(retryMetrics)}, err
	}

	return Result{HandlerResult: shell.NewHandlerResult(retryMetrics), Returned: event}, nil
}

// executeCommand contains the transactional part that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.BookCopyReturned, error) {
	var event core.BookCopyReturned

	err := h.store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		loan, err := tx.GetLoan(ctx, command.LoanID)
		loanFound := true

		if errors.Is(err, ledger.ErrLoanNotFound) {
			loanFound = false
		} else if err != nil {
			return err
		}

		result := Decide(command, loan, loanFound)
		if err = result.HasError(); err != nil {
			return err
		}

		var ok bool
		if event, ok = result.Event.(core.BookCopyReturned); !ok {
			return shell.ErrUnexpectedLedgerEvent
		}

		// The update only matches while the loan is open. A concurrent return that committed first makes it miss.
		matched, err := tx.UpdateLoan(ctx, event.LoanID, event.ToLoanUpdate())
		if err != nil {
			return err
		}

		if !matched {
			return ledger.Reject(ledger.RejectionConflict, ledger.ErrLoanAlreadyReturned)
		}

		if err = tx.IncrementStock(ctx, event.BookID, 1); err != nil {
			return err
		}

		entry, err := shell.LedgerEntryFrom(event, shell.BuildInitiatingEntryMetadata())
		if err != nil {
			return err
		}

		return tx.AppendLedgerEntry(ctx, entry)
	})

	return event, err
}

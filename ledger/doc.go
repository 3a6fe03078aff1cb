// Package ledger provides the core types and store contracts of the lending ledger.
//
// The ledger tracks two kinds of records: books with a non-negative availableStock counter
// and loans that lend one copy of a book to one borrower. A loan moves through the states
// borrowed, overdue and returned, where returned is terminal.
//
// Storage engines (postgresengine, memengine) implement the Store contract. All writes that
// touch both a book and a loan run inside Store.WithinTx so both succeed or neither does.
//
// Key types:
//   - Book: an inventory unit with its lendable stock
//   - Loan: a lending record with its status, due date and accrued fine
//   - LoanUpdate: a partial, optionally status-conditional loan update
//   - LoanFilter: criteria for loan searches
//   - LedgerEntry: an append-only journal record written next to each borrow and return
//   - SweepRun: the log record of one overdue recalculation pass
//
// Common usage pattern:
//
//	err := store.WithinTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
//		book, err := tx.GetBook(ctx, bookID)
//		if err != nil {
//			return err
//		}
//
//		if _, err = tx.InsertLoan(ctx, loan); err != nil {
//			return err
//		}
//
//		return tx.IncrementStock(ctx, book.ID, -1)
//	})
package ledger

package reconcilestock

import (
	"errors"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// ErrMoreOpenLoansThanCopies is returned for a book that can not be repaired through its stock.
var ErrMoreOpenLoansThanCopies = errors.New("more open loans than total copies")

// Correction computes the stock delta that brings book back in line with its open loans.
// A zero delta means the book does not drift (anymore).
func Correction(book ledger.Book, openLoans int) (int, error) {
	drift := ledger.StockDrift{
		BookID:         book.ID,
		AvailableStock: book.AvailableStock,
		OpenLoans:      openLoans,
		TotalCopies:    book.TotalCopies,
	}

	if drift.ExpectedStock() < 0 {
		return 0, ErrMoreOpenLoansThanCopies
	}

	return drift.Delta(), nil
}

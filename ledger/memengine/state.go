package memengine

import (
	"sort"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

type state struct {
	books     map[ledger.BookID]ledger.Book
	loans     map[ledger.LoanID]ledger.Loan
	entries   ledger.LedgerEntries
	sweepRuns ledger.SweepRuns
	lastSeq   uint
}

func newState() *state {
	return &state{
		books: make(map[ledger.BookID]ledger.Book),
		loans: make(map[ledger.LoanID]ledger.Loan),
	}
}

// clone copies the maps and slices. Book and Loan are values, so the copy is independent.
func (st *state) clone() *state {
	c := &state{
		books:     make(map[ledger.BookID]ledger.Book, len(st.books)),
		loans:     make(map[ledger.LoanID]ledger.Loan, len(st.loans)),
		entries:   append(ledger.LedgerEntries(nil), st.entries...),
		sweepRuns: append(ledger.SweepRuns(nil), st.sweepRuns...),
		lastSeq:   st.lastSeq,
	}

	for id, book := range st.books {
		c.books[id] = book
	}

	for id, loan := range st.loans {
		c.loans[id] = loan
	}

	return c
}

func (st *state) getBook(id ledger.BookID) (ledger.Book, error) {
	book, ok := st.books[id]
	if !ok {
		return ledger.Book{}, ledger.ErrBookNotFound
	}

	return book, nil
}

func (st *state) incrementStock(id ledger.BookID, delta int) error {
	book, ok := st.books[id]
	if !ok {
		return ledger.ErrBookNotFound
	}

	if book.AvailableStock+delta < 0 {
		return ledger.ErrStockWouldGoNegative
	}

	book.AvailableStock += delta
	st.books[id] = book

	return nil
}

func (st *state) insertLoan(loan ledger.Loan) (ledger.LoanID, error) {
	if _, exists := st.loans[loan.ID]; exists {
		return "", ErrDuplicateLoanID
	}

	st.loans[loan.ID] = loan

	return loan.ID, nil
}

func (st *state) getLoan(id ledger.LoanID) (ledger.Loan, error) {
	loan, ok := st.loans[id]
	if !ok {
		return ledger.Loan{}, ledger.ErrLoanNotFound
	}

	return loan, nil
}

func (st *state) updateLoan(id ledger.LoanID, update ledger.LoanUpdate) bool {
	loan, ok := st.loans[id]
	if !ok || !update.Allows(loan.Status) {
		return false
	}

	st.loans[id] = update.ApplyTo(loan)

	return true
}

func (st *state) queryActiveLoans(asOf time.Time) ledger.Loans {
	loans := make(ledger.Loans, 0)
	for _, loan := range st.loans {
		if loan.IsOverdueAt(asOf) {
			loans = append(loans, loan)
		}
	}

	sort.Slice(loans, func(i, j int) bool {
		if loans[i].DueDate.Equal(loans[j].DueDate) {
			return loans[i].ID < loans[j].ID
		}

		return loans[i].DueDate.Before(loans[j].DueDate)
	})

	return loans
}

func (st *state) queryAll(filter ledger.LoanFilter, limit int) ledger.Loans {
	loans := make(ledger.Loans, 0)
	for _, loan := range st.loans {
		if filter.Matches(loan) {
			loans = append(loans, loan)
		}
	}

	sort.Slice(loans, func(i, j int) bool {
		if loans[i].BorrowDate.Equal(loans[j].BorrowDate) {
			return loans[i].ID < loans[j].ID
		}

		return loans[i].BorrowDate.After(loans[j].BorrowDate)
	})

	if limit = ledger.NormalizeQueryLimit(limit); len(loans) > limit {
		loans = loans[:limit]
	}

	return loans
}

func (st *state) appendEntry(entry ledger.LedgerEntry) {
	st.lastSeq++
	entry.SequenceNumber = st.lastSeq
	st.entries = append(st.entries, entry)
}

package ledger

import (
	"strings"
)

const (
	// DefaultQueryLimit is used when a loan query is called with a limit <= 0.
	DefaultQueryLimit = 100

	// MaxQueryLimit caps the number of loans a single query returns.
	MaxQueryLimit = 1000
)

// LoanFilter holds the criteria of a loan query. An empty LoanFilter matches all loans.
//
// It should only be constructed with BuildLoanFilter.
type LoanFilter struct {
	search        string
	statuses      []LoanStatus
	bookID        BookID
	borrowerEmail string
}

// LoanFilterBuilder builds a LoanFilter step by step.
type LoanFilterBuilder struct {
	filter LoanFilter
}

// BuildLoanFilter creates a LoanFilterBuilder.
//
// Example:
//
//	filter := BuildLoanFilter().
//		Searching("tolkien").
//		WithStatusIn(LoanStatusBorrowed, LoanStatusOverdue).
//		Finalize()
func BuildLoanFilter() LoanFilterBuilder {
	return LoanFilterBuilder{}
}

// Searching matches loans whose borrower name, borrower email or book title contains term,
// ignoring case. Surrounding whitespace is trimmed; an empty term disables the search.
func (b LoanFilterBuilder) Searching(term string) LoanFilterBuilder {
	b.filter.search = strings.TrimSpace(term)
	return b
}

// WithStatusIn matches loans in any of the given statuses. Unknown statuses are ignored.
func (b LoanFilterBuilder) WithStatusIn(statuses ...LoanStatus) LoanFilterBuilder {
	valid := make([]LoanStatus, 0, len(statuses))
	for _, status := range statuses {
		if status.IsValid() && !containsStatus(valid, status) {
			valid = append(valid, status)
		}
	}

	b.filter.statuses = valid

	return b
}

// ForBook matches loans against the given book.
func (b LoanFilterBuilder) ForBook(bookID BookID) LoanFilterBuilder {
	b.filter.bookID = strings.TrimSpace(bookID)
	return b
}

// ForBorrowerEmail matches loans of the given borrower, ignoring case.
func (b LoanFilterBuilder) ForBorrowerEmail(email string) LoanFilterBuilder {
	b.filter.borrowerEmail = strings.TrimSpace(email)
	return b
}

// Finalize returns the built LoanFilter.
func (b LoanFilterBuilder) Finalize() LoanFilter {
	return b.filter
}

// Search returns the search term or an empty string.
func (f LoanFilter) Search() string {
	return f.search
}

// Statuses returns the status criteria or nil.
func (f LoanFilter) Statuses() []LoanStatus {
	return f.statuses
}

// BookID returns the book criterion or an empty string.
func (f LoanFilter) BookID() BookID {
	return f.bookID
}

// BorrowerEmail returns the borrower email criterion or an empty string.
func (f LoanFilter) BorrowerEmail() string {
	return f.borrowerEmail
}

// Matches evaluates the filter against a single loan, the same way storage engines evaluate it in queries.
func (f LoanFilter) Matches(loan Loan) bool {
	if len(f.statuses) > 0 && !containsStatus(f.statuses, loan.Status) {
		return false
	}

	if f.bookID != "" && loan.BookID != f.bookID {
		return false
	}

	if f.borrowerEmail != "" && !strings.EqualFold(loan.BorrowerEmail, f.borrowerEmail) {
		return false
	}

	if f.search == "" {
		return true
	}

	term := strings.ToLower(f.search)

	return strings.Contains(strings.ToLower(loan.BorrowerName), term) ||
		strings.Contains(strings.ToLower(loan.BorrowerEmail), term) ||
		strings.Contains(strings.ToLower(loan.BookTitle), term)
}

// NormalizeQueryLimit maps limit into the range [1, MaxQueryLimit], using DefaultQueryLimit for limit <= 0.
func NormalizeQueryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}

func containsStatus(statuses []LoanStatus, status LoanStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}

	return false
}

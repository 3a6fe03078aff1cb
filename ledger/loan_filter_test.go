package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LoanFilter_Matches(t *testing.T) {
	loan := Loan{
		BookID:        "book-1",
		BorrowerName:  "Ada Lovelace",
		BorrowerEmail: "ada@example.org",
		BookTitle:     "Sketch of the Analytical Engine",
		Status:        LoanStatusOverdue,
	}

	tests := []struct {
		name     string
		filter   LoanFilter
		expected bool
	}{
		{name: "empty filter", filter: BuildLoanFilter().Finalize(), expected: true},
		{name: "search in name ignoring case", filter: BuildLoanFilter().Searching("LOVELACE").Finalize(), expected: true},
		{name: "search in email", filter: BuildLoanFilter().Searching("example.org").Finalize(), expected: true},
		{name: "search in title", filter: BuildLoanFilter().Searching("analytical").Finalize(), expected: true},
		{name: "search without hit", filter: BuildLoanFilter().Searching("babbage").Finalize(), expected: false},
		{name: "blank search", filter: BuildLoanFilter().Searching("   ").Finalize(), expected: true},
		{name: "matching status", filter: BuildLoanFilter().WithStatusIn(LoanStatusBorrowed, LoanStatusOverdue).Finalize(), expected: true},
		{name: "other status", filter: BuildLoanFilter().WithStatusIn(LoanStatusReturned).Finalize(), expected: false},
		{name: "matching book", filter: BuildLoanFilter().ForBook("book-1").Finalize(), expected: true},
		{name: "other book", filter: BuildLoanFilter().ForBook("book-2").Finalize(), expected: false},
		{name: "borrower email ignoring case", filter: BuildLoanFilter().ForBorrowerEmail("ADA@example.org").Finalize(), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(loan))
		})
	}
}

func Test_LoanFilterBuilder_WithStatusIn_DropsUnknownAndDuplicates(t *testing.T) {
	// act
	filter := BuildLoanFilter().
		WithStatusIn(LoanStatusBorrowed, LoanStatus("lost"), LoanStatusBorrowed).
		Finalize()

	// assert
	assert.Equal(t, []LoanStatus{LoanStatusBorrowed}, filter.Statuses())
}

func Test_NormalizeQueryLimit(t *testing.T) {
	assert.Equal(t, DefaultQueryLimit, NormalizeQueryLimit(0))
	assert.Equal(t, DefaultQueryLimit, NormalizeQueryLimit(-5))
	assert.Equal(t, 25, NormalizeQueryLimit(25))
	assert.Equal(t, MaxQueryLimit, NormalizeQueryLimit(MaxQueryLimit+1))
}

package ledger

import (
	"errors"
)

// BookID is a type alias for string, representing the catalog identifier of a book.
type BookID = string

// LoanID is a type alias for string, representing the identifier of a loan.
type LoanID = string

// Validation errors, returned wrapped in a Rejection of kind RejectionValidation.
var (
	ErrMissingRequiredFields = errors.New("missing required fields: borrowerName, borrowerEmail, bookId, dueDate")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrDueDateNotInFuture    = errors.New("due date must be in the future")
	ErrMissingLoanID         = errors.New("valid borrow ID is required")
	ErrNegativeFinePerDay    = errors.New("fine per day must not be negative")
	ErrNegativeFineOverride  = errors.New("fine must not be negative")
)

// Conflict errors, returned wrapped in a Rejection of kind RejectionConflict.
var (
	ErrBookNotFound         = errors.New("book not found")
	ErrBookNotAvailable     = errors.New("book is not available for borrowing")
	ErrLoanNotFound         = errors.New("borrow record not found")
	ErrLoanAlreadyReturned  = errors.New("book has already been returned")
	ErrStockWouldGoNegative = errors.New("stock would go negative")
)

// ErrConcurrencyConflict is returned when the database aborted a transaction because of a serialization
// failure or a deadlock. Nothing was written, so the operation can be retried.
var ErrConcurrencyConflict = errors.New("concurrency conflict, transaction was rolled back")

// ErrConsistencyFailure is returned when a transaction could not be committed or rolled back cleanly.
var ErrConsistencyFailure = errors.New("lending transaction could not be completed atomically")

// Infrastructure errors.
var (
	ErrNilDatabaseConnection = errors.New("database connection is nil")
	ErrEmptyTableName        = errors.New("empty table name supplied")
	ErrBuildingQueryFailed   = errors.New("building query failed")
	ErrQueryingFailed        = errors.New("querying failed")
	ErrExecFailed            = errors.New("executing statement failed")
	ErrRowsAffectedFailed    = errors.New("reading rows affected failed")
	ErrScanningDBRowFailed   = errors.New("scanning db row failed")
	ErrBeginTxFailed         = errors.New("beginning transaction failed")
	ErrCommitTxFailed        = errors.New("committing transaction failed")
	ErrMarshalingJSONFailed  = errors.New("marshaling json failed")
	ErrInvalidPayloadJSON    = errors.New("payload json is not valid")
	ErrInvalidMetadataJSON   = errors.New("metadata json is not valid")
)

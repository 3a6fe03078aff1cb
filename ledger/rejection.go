package ledger

import (
	"errors"
)

// RejectionKind classifies a business rule rejection.
type RejectionKind int

const (
	// RejectionValidation marks missing or malformed input.
	RejectionValidation RejectionKind = iota + 1

	// RejectionConflict marks a request that is well-formed but conflicts with the current ledger state.
	RejectionConflict
)

// String provides a string representation of RejectionKind for logging and metrics labels.
func (k RejectionKind) String() string {
	switch k {
	case RejectionValidation:
		return "validation"
	case RejectionConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Rejection is the outcome of a lending operation that was refused before any mutation.
//
// A Rejection is a value, not a fault: callers detect it with AsRejection or errors.As and
// show Message to the user. Reason is one of the sentinel errors of this package, so
// errors.Is(err, ErrBookNotAvailable) works through a Rejection.
type Rejection struct {
	Kind    RejectionKind
	Reason  error
	Message string
}

// Reject builds a Rejection whose message is the reason's text.
func Reject(kind RejectionKind, reason error) Rejection {
	return Rejection{Kind: kind, Reason: reason, Message: reason.Error()}
}

// RejectWithMessage builds a Rejection with a message that differs from the reason's text.
func RejectWithMessage(kind RejectionKind, reason error, message string) Rejection {
	return Rejection{Kind: kind, Reason: reason, Message: message}
}

func (r Rejection) Error() string {
	return r.Message
}

func (r Rejection) Unwrap() error {
	return r.Reason
}

// AsRejection reports whether err is or wraps a Rejection and returns it.
func AsRejection(err error) (Rejection, bool) {
	var rejection Rejection
	if errors.As(err, &rejection) {
		return rejection, true
	}

	return Rejection{}, false
}

// IsRejection reports whether err is or wraps a Rejection.
func IsRejection(err error) bool {
	_, ok := AsRejection(err)
	return ok
}

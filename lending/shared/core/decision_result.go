package core

import (
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// DecisionResult represents the outcome of a business decision in a Decide function.
// This enables type-safe, functional programming style decision modeling.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// SuccessDecision(event) or RejectedDecision(rejection).
// Do not construct DecisionResult directly to ensure type safety.
type DecisionResult struct {
	Outcome   string      // "success" or "rejected"
	Event     LedgerEvent // nil for rejected decisions
	Rejection ledger.Rejection
}

const (
	successOutcome  = "success"
	rejectedOutcome = "rejected"
)

// SuccessDecision creates a DecisionResult indicating a state change described by the event.
func SuccessDecision(event LedgerEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Event:   event,
	}
}

// RejectedDecision creates a DecisionResult indicating a business rule violation.
// Nothing is written for a rejected decision.
func RejectedDecision(rejection ledger.Rejection) DecisionResult {
	return DecisionResult{
		Outcome:   rejectedOutcome,
		Rejection: rejection,
	}
}

// HasEventToAppend returns true if there is an event to journal.
func (r DecisionResult) HasEventToAppend() bool {
	return r.Outcome == successOutcome
}

// HasError returns the rejection as an error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == rejectedOutcome {
		return r.Rejection
	}

	return nil
}

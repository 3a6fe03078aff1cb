package shell

import (
	"context"
)

// Command represents the contract for all command types of the lending ledger.
// Each command encapsulates the intent and parameters needed to execute a specific business operation.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CommandResult represents the contract for all command result types.
// Results embed HandlerResult, which provides the execution metadata for observability.
type CommandResult interface {
	ExecutionMetadata() HandlerResult
}

// CommandHandler defines the contract for components that process commands.
// Handlers orchestrate the complete command workflow: validate, load, decide, write.
// A business rule violation is returned as a ledger.Rejection error next to a result that still
// carries the execution metadata.
type CommandHandler[C Command, R CommandResult] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Query represents the contract for all query types of the lending ledger.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that read projections of the ledger.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

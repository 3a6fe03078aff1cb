package shell

import "time"

// HandlerResult carries the execution metadata of a command handler run (retry information)
// without coupling the handler to specific observability implementations.
//
// Command results embed it, which makes them satisfy CommandResult.
type HandlerResult struct {
	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	// This excludes the actual execution time, only counting sleep/wait periods.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	// Values: "none" (success), "concurrency_conflict", "rejected", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool
}

// ExecutionMetadata returns the result itself, so that embedding HandlerResult implements CommandResult.
func (r HandlerResult) ExecutionMetadata() HandlerResult {
	return r
}

// NewHandlerResult creates a HandlerResult from retry metrics, for successful and failed runs alike.
func NewHandlerResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewSingleAttemptResult creates a HandlerResult for handlers that never retry.
func NewSingleAttemptResult(err error) HandlerResult {
	return HandlerResult{
		RetryAttempts: 1,
		LastErrorType: getErrorType(err),
	}
}

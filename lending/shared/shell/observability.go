package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration (OpenTelemetry-compatible).
	CommandHandlerDurationMetric = "lending_command_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "lending_commands_total"

	// CommandHandlerRejectedMetric tracks commands refused by a business rule.
	//
	// Labels:
	//   - command_type: Type of command (e.g., "BorrowBook")
	//   - rejection_kind: "validation" or "conflict"
	CommandHandlerRejectedMetric = "lending_command_rejections_total"

	// CommandHandlerCanceledMetric tracks canceled operations.
	CommandHandlerCanceledMetric = "lending_command_canceled_total"

	// CommandHandlerTimeoutMetric tracks timeout operations.
	CommandHandlerTimeoutMetric = "lending_command_timeouts_total"

	// CommandHandlerConcurrencyConflictMetric tracks commands that failed on a concurrency conflict after all retries.
	CommandHandlerConcurrencyConflictMetric = "lending_command_concurrency_conflicts_total"

	// QueryHandlerDurationMetric tracks query handler execution duration (OpenTelemetry-compatible).
	QueryHandlerDurationMetric = "lending_query_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "lending_queries_total"

	// QueryHandlerCanceledMetric tracks canceled query operations.
	QueryHandlerCanceledMetric = "lending_query_canceled_total"

	// QueryHandlerTimeoutMetric tracks timeout query operations.
	QueryHandlerTimeoutMetric = "lending_query_timeouts_total"

	// CommandHandlerRetriesMetric tracks retry attempts in command handlers.
	//
	// Labels:
	//   - command_type: Type of command being retried (e.g., "ReturnBook")
	//   - attempt_number: Which retry attempt (1, 2, 3, 4, 5)
	//   - error_type: Category of error causing retry (e.g., "concurrency_conflict")
	//
	// Use cases:
	//   - Alert on high retry rates: rate(lending_command_retries_total[5m])
	CommandHandlerRetriesMetric = "lending_command_retries_total"

	// CommandHandlerRetryDelayMetric tracks retry delays in command handlers.
	CommandHandlerRetryDelayMetric = "lending_command_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric tracks when max retries are exhausted.
	//
	// Use cases:
	//   - Alert on retry exhaustion: increase(lending_command_max_retries_reached_total[5m]) > 0
	CommandHandlerMaxRetriesReachedMetric = "lending_command_max_retries_reached_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusRejected indicates a business rule rejection. Nothing was written.
	StatusRejected = "rejected"

	// StatusError indicates an infrastructure or consistency error.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation failed due to a concurrency conflict.
	StatusConcurrencyConflict = "concurrency_conflict"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "command handler started"

	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "command handler completed"

	// LogMsgCommandRejected is logged when a business rule refuses the command.
	LogMsgCommandRejected = "command handler rejected"

	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "command handler failed"

	// LogMsgQueryStarted is logged when query processing begins.
	LogMsgQueryStarted = "query handler started"

	// LogMsgQueryCompleted is logged when query processing succeeds.
	LogMsgQueryCompleted = "query handler completed"

	// LogMsgQueryFailed is logged when query processing fails.
	LogMsgQueryFailed = "query handler failed"

	// LogAttrCommandType identifies the command type in logs.
	LogAttrCommandType = "command_type"

	// LogAttrQueryType identifies the query type in logs.
	LogAttrQueryType = "query_type"

	// LogAttrStatus indicates the processing status.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrBusinessOutcome classifies the business result.
	LogAttrBusinessOutcome = "business_outcome"

	// LogAttrRejectionKind carries the kind of rule a rejection violated.
	LogAttrRejectionKind = "rejection_kind"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "commandhandler.handle"

	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "queryhandler.handle"
)

// Interface aliases for convenience when using handler observability.
// These match the ledger observability interfaces for consistency.

// MetricsCollector interface for collecting handler performance metrics.
type MetricsCollector = ledger.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = ledger.ContextualMetricsCollector

// TracingCollector interface for distributed tracing in handlers.
type TracingCollector = ledger.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = ledger.SpanContext

// ContextualLogger interface for context-aware logging in handlers.
type ContextualLogger = ledger.ContextualLogger

// Logger interface for basic logging in handlers.
type Logger = ledger.Logger

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   fmt.Sprintf("%d", attemptNumber),
		"error_type":       errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// StatusFor classifies the outcome of a handler run for metrics, spans and logs.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsRejection(err):
		return StatusRejected
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	default:
		return StatusError
	}
}

// RecordCommandMetrics records all relevant metrics for a command operation.
// It handles both context-aware and basic metrics collectors automatically.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
	err error,
) {

	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)

	switch status {
	case StatusRejected:
		rejectedLabels := BuildCommandLabels(commandType, StatusRejected)
		if rejection, ok := ledger.AsRejection(err); ok {
			rejectedLabels[LogAttrRejectionKind] = rejection.Kind.String()
		}
		incrementCounter(ctx, collector, CommandHandlerRejectedMetric, rejectedLabels)

	case StatusCanceled:
		incrementCounter(ctx, collector, CommandHandlerCanceledMetric, BuildCommandLabels(commandType, StatusCanceled))

	case StatusTimeout:
		incrementCounter(ctx, collector, CommandHandlerTimeoutMetric, BuildCommandLabels(commandType, StatusTimeout))

	case StatusConcurrencyConflict:
		incrementCounter(
			ctx,
			collector,
			CommandHandlerConcurrencyConflictMetric,
			BuildCommandLabels(commandType, StatusConcurrencyConflict),
		)
	}
}

// RecordQueryMetrics records all relevant metrics for a query operation.
// It handles both context-aware and basic metrics collectors automatically.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {

	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, QueryHandlerCanceledMetric, BuildQueryLabels(queryType, StatusCanceled))
	case StatusTimeout:
		incrementCounter(ctx, collector, QueryHandlerTimeoutMetric, BuildQueryLabels(queryType, StatusTimeout))
	}
}

// StartCommandSpan starts a distributed tracing span for command operations.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartCommandSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	commandType string,
) (context.Context, SpanContext) {

	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, map[string]string{LogAttrCommandType: commandType})
}

// StartQuerySpan starts a distributed tracing span for query operations.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartQuerySpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	queryType string,
) (context.Context, SpanContext) {

	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, SpanNameQueryHandle, map[string]string{LogAttrQueryType: queryType})
}

// FinishSpan completes a command or query span with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {

	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: formatDurationMS(duration),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	if rejection, ok := ledger.AsRejection(err); ok {
		attrs[LogAttrRejectionKind] = rejection.Kind.String()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string) {
	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, LogMsgCommandStarted, LogAttrCommandType, commandType)
	} else if logger != nil {
		logger.Debug(LogMsgCommandStarted, LogAttrCommandType, commandType)
	}
}

// LogCommandSuccess logs successful command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	duration time.Duration,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, StatusSuccess,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgCommandCompleted, args...)
	}
}

// LogCommandRejected logs a business rule rejection. A rejection is an expected outcome, so it is not an error log.
func LogCommandRejected(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	err error,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, StatusRejected,
		LogAttrError, err.Error(),
	}

	if rejection, ok := ledger.AsRejection(err); ok {
		args = append(args, LogAttrRejectionKind, rejection.Kind.String())
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandRejected, args...)
	} else if logger != nil {
		logger.Info(LogMsgCommandRejected, args...)
	}
}

// LogCommandError logs command processing errors.
func LogCommandError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	status string,
	err error,
) {

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrStatus, status,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgCommandFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgCommandFailed, args...)
	}
}

// LogQueryStart logs the beginning of query processing.
func LogQueryStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string) {
	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, LogMsgQueryStarted, LogAttrQueryType, queryType)
	} else if logger != nil {
		logger.Debug(LogMsgQueryStarted, LogAttrQueryType, queryType)
	}
}

// LogQuerySuccess logs successful query completion.
func LogQuerySuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	duration time.Duration,
) {

	args := []any{
		LogAttrQueryType, queryType,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgQueryCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgQueryCompleted, args...)
	}
}

// LogQueryError logs query processing errors.
func LogQueryError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	status string,
	err error,
) {

	args := []any{
		LogAttrQueryType, queryType,
		LogAttrStatus, status,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgQueryFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgQueryFailed, args...)
	}
}

// formatDurationMS formats duration in milliseconds for span attributes.
func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

func recordDuration(
	ctx context.Context,
	collector MetricsCollector,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {

	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

// IsRejection checks if an error is a business rule rejection.
func IsRejection(err error) bool {
	return ledger.IsRejection(err)
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is due to a rolled back concurrent transaction.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, ledger.ErrConcurrencyConflict)
}

package postgresengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

const (
	metricOperationDuration    = "ledger_operation_duration_seconds"
	metricOperationsTotal      = "ledger_operations_total"
	metricConcurrencyConflicts = "ledger_concurrency_conflicts_total"
	metricRowsReturned         = "ledger_rows_returned"

	spanNamePrefix = "ledger."

	operationGetBook            = "get_book"
	operationIncrementStock     = "increment_stock"
	operationPutBook            = "put_book"
	operationInsertLoan         = "insert_loan"
	operationGetLoan            = "get_loan"
	operationUpdateLoan         = "update_loan"
	operationQueryActiveLoans   = "query_active_loans"
	operationQueryAll           = "query_all"
	operationTransaction        = "transaction"
	operationAppendLedgerEntry  = "append_ledger_entry"
	operationQueryLedgerEntries = "query_ledger_entries"
	operationRecordSweepRun     = "record_sweep_run"
	operationQuerySweepRuns     = "query_sweep_runs"
	operationQueryStats         = "query_stats"
	operationQueryStockDrift    = "query_stock_drift"

	statusSuccess             = "success"
	statusRejected            = "rejected"
	statusError               = "error"
	statusCanceled            = "canceled"
	statusTimeout             = "timeout"
	statusConcurrencyConflict = "concurrency_conflict"

	logMsgBuildQueryFailed    = "failed to build sql statement"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgBeginTxFailed       = "failed to begin transaction"
	logMsgCommitTxFailed      = "failed to commit transaction"
	logMsgRollbackTxFailed    = "failed to roll back transaction"
	logMsgSQLExecuted         = "executed sql"
	logMsgOperationCompleted  = "ledger operation completed"
	logMsgConcurrencyConflict = "concurrency conflict detected"

	logAttrError       = "error"
	logAttrQuery       = "query"
	logAttrOperation   = "operation"
	logAttrStatus      = "status"
	logAttrDurationMS  = "duration_ms"
	spanAttrOperation  = "operation"
	spanAttrStatus     = "status"
	spanAttrDurationMS = "duration_ms"
	spanAttrError      = "error"
)

// instrument runs fn as one observable store operation: a span, a duration metric, an operation counter and an
// info log line with the outcome. Missing collectors and loggers turn the corresponding part into a no-op.
func (s Store) instrument(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	spanCtx, span := s.startSpan(ctx, operation)

	err := fn(spanCtx)

	duration := time.Since(start)
	status := operationStatus(err)

	s.recordOperationMetrics(spanCtx, operation, status, duration)
	s.finishSpan(span, status, duration, err)
	s.logOperation(spanCtx, operation, status, duration)

	return err
}

func operationStatus(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, context.Canceled):
		return statusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return statusTimeout
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		return statusConcurrencyConflict
	case isRejectionReason(err):
		return statusRejected
	default:
		return statusError
	}
}

// isRejectionReason reports whether err is an expected business outcome rather than a failure.
func isRejectionReason(err error) bool {
	return ledger.IsRejection(err) ||
		errors.Is(err, ledger.ErrBookNotFound) ||
		errors.Is(err, ledger.ErrLoanNotFound) ||
		errors.Is(err, ledger.ErrStockWouldGoNegative) ||
		errors.Is(err, ledger.ErrLoanAlreadyReturned) ||
		errors.Is(err, ledger.ErrBookNotAvailable)
}

func (s Store) startSpan(ctx context.Context, operation string) (context.Context, ledger.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{spanAttrOperation: operation})
}

func (s Store) finishSpan(span ledger.SpanContext, status string, duration time.Duration, err error) {
	if s.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrStatus:     status,
		spanAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 3, 64),
	}

	if err != nil {
		attrs[spanAttrError] = err.Error()
	}

	s.tracingCollector.FinishSpan(span, status, attrs)
}

func (s Store) recordOperationMetrics(ctx context.Context, operation, status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrOperation: operation, logAttrStatus: status}

	if contextual, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		contextual.IncrementCounterContext(ctx, metricOperationsTotal, labels)

		if status == statusConcurrencyConflict {
			contextual.IncrementCounterContext(ctx, metricConcurrencyConflicts, map[string]string{logAttrOperation: operation})
		}

		return
	}

	s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	s.metricsCollector.IncrementCounter(metricOperationsTotal, labels)

	if status == statusConcurrencyConflict {
		s.metricsCollector.IncrementCounter(metricConcurrencyConflicts, map[string]string{logAttrOperation: operation})
	}
}

func (s Store) recordRowCount(ctx context.Context, count int) {
	if s.metricsCollector == nil {
		return
	}

	if contextual, ok := s.metricsCollector.(ledger.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metricRowsReturned, float64(count), nil)
		return
	}

	s.metricsCollector.RecordValue(metricRowsReturned, float64(count), nil)
}

// queryRows runs a query and calls scan for every row.
func (s Store) queryRows(
	ctx context.Context,
	q adapters.DBQuerier,
	sqlQuery string,
	scan func(rows adapters.DBRows) error,
) error {

	start := time.Now()
	rows, err := q.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if err != nil {
		return s.dbError(ctx, logMsgDBQueryFailed, ledger.ErrQueryingFailed, err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logWarnContext(ctx, logMsgCloseRowsFailed, closeErr)
		}
	}()

	count := 0
	for rows.Next() {
		if err = scan(rows); err != nil {
			return s.dbError(ctx, logMsgScanRowFailed, ledger.ErrScanningDBRowFailed, err)
		}

		count++
	}

	if err = rows.Err(); err != nil {
		return s.dbError(ctx, logMsgDBQueryFailed, ledger.ErrQueryingFailed, err)
	}

	s.recordRowCount(ctx, count)

	return nil
}

// exec runs a statement and returns the number of affected rows.
func (s Store) exec(ctx context.Context, q adapters.DBQuerier, sqlQuery string) (int64, error) {
	start := time.Now()
	result, err := q.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if err != nil {
		return 0, s.dbError(ctx, logMsgDBExecFailed, ledger.ErrExecFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, s.dbError(ctx, logMsgRowsAffectedFailed, ledger.ErrRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

// dbError joins a database error with its sentinel. Serialization failures and deadlocks become
// ledger.ErrConcurrencyConflict, because the server already rolled the transaction back.
func (s Store) dbError(ctx context.Context, message string, sentinel error, err error) error {
	if adapters.IsSerializationFailure(err) {
		s.logWarnContext(ctx, logMsgConcurrencyConflict, err)
		return errors.Join(ledger.ErrConcurrencyConflict, err)
	}

	s.logErrorContext(ctx, message, err)

	return errors.Join(sentinel, err)
}

func (s Store) buildError(ctx context.Context, err error) error {
	s.logErrorContext(ctx, logMsgBuildQueryFailed, err)
	return errors.Join(ledger.ErrBuildingQueryFailed, err)
}

func (s Store) logQueryWithDuration(ctx context.Context, sqlQuery string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted, args...)
	} else if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted, args...)
	}
}

func (s Store) logOperation(ctx context.Context, operation, status string, duration time.Duration) {
	args := []any{logAttrOperation, operation, logAttrStatus, status, logAttrDurationMS, toMilliseconds(duration)}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperationCompleted, args...)
	} else if s.logger != nil {
		s.logger.Info(logMsgOperationCompleted, args...)
	}
}

func (s Store) logWarnContext(ctx context.Context, message string, err error) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
	} else if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}
}

func (s Store) logErrorContext(ctx context.Context, message string, err error) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, logAttrError, err.Error())
	} else if s.logger != nil {
		s.logger.Error(message, logAttrError, err.Error())
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

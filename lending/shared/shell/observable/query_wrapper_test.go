package observable_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shared/shell/observable"
	. "github.com/AntonStoeckl/lending-ledger-go/testutil/observability/testdoubles" //nolint:revive
)

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	handler := mockQueryHandler{result: []string{"a", "b"}}
	metricsCollector := NewMetricsCollectorSpy(true)
	tracingCollector := NewTracingCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		handler,
		observable.WithQueryMetrics[mockQuery, []string](metricsCollector),
		observable.WithQueryTracing[mockQuery, []string](tracingCollector),
		observable.WithQueryContextualLogging[mockQuery, []string](contextualLogger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, tracingCollector.HasSpanRecordForName(shell.SpanNameQueryHandle).
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, contextualLogger.HasInfoLog(shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Error(t *testing.T) {
	// arrange
	handler := mockQueryHandler{err: ledger.ErrQueryingFailed}
	metricsCollector := NewMetricsCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		handler,
		observable.WithQueryMetrics[mockQuery, []string](metricsCollector),
		observable.WithQueryContextualLogging[mockQuery, []string](contextualLogger),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.ErrorIs(t, err, ledger.ErrQueryingFailed)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithStatus(shell.StatusError).
		Assert())
	assert.True(t, contextualLogger.HasErrorLog(shell.LogMsgQueryFailed))
}

func Test_QueryWrapper_Handle_Timeout(t *testing.T) {
	// arrange
	handler := mockQueryHandler{err: context.DeadlineExceeded}
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, []string](
		handler,
		observable.WithQueryMetrics[mockQuery, []string](metricsCollector),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), mockQuery{})

	// assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerTimeoutMetric).
		WithStatus(shell.StatusTimeout).
		Assert())
}

/*** Test Helpers ***/

type mockQuery struct{}

func (mockQuery) QueryType() string {
	return "TestQuery"
}

type mockQueryHandler struct {
	result []string
	err    error
}

func (h mockQueryHandler) Handle(_ context.Context, _ mockQuery) ([]string, error) {
	return h.result, h.err
}

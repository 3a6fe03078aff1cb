package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/memengine"
	. "github.com/AntonStoeckl/lending-ledger-go/testutil/fixtures" //nolint:revive
	"github.com/AntonStoeckl/lending-ledger-go/testutil/observability/testdoubles"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func Test_Healthcheck(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodGet, "/v1/healthcheck", "")

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func Test_BorrowBook_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	book := GivenBook(t, ctx, store, "The Left Hand of Darkness", 2)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodPost, "/v1/loans", `{
		"bookId": "`+book.ID+`",
		"borrowerName": "Genly Ai",
		"borrowerEmail": "genly@ekumen.example",
		"borrowerPhone": "555-0100",
		"dueDate": "2026-03-24",
		"notes": "first visit"
	}`)

	// assert
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Book borrowed successfully", body["message"])

	loanID, ok := body["loanId"].(string)
	require.True(t, ok, "response should carry the loan id")
	RequireStock(t, ctx, store, book.ID, 1)

	loan := RequireLoan(t, ctx, store, loanID)
	assert.Equal(t, ledger.LoanStatusBorrowed, loan.Status)
	assert.Equal(t, "Genly Ai", loan.BorrowerName)
	assert.Equal(t, time.Date(2026, time.March, 24, 0, 0, 0, 0, time.UTC), loan.DueDate)
}

func Test_BorrowBook_Rejected(t *testing.T) {
	ctx := context.Background()
	app, store := newTestApplication(t)
	book := GivenBook(t, ctx, store, "The Dispossessed", 1)

	testCases := []struct {
		description     string
		body            string
		expectedMessage string
	}{
		{
			description:     "missing borrower",
			body:            `{"bookId": "` + book.ID + `", "dueDate": "2026-03-24"}`,
			expectedMessage: ledger.ErrMissingRequiredFields.Error(),
		},
		{
			description:     "malformed email",
			body:            `{"bookId": "` + book.ID + `", "borrowerName": "Shevek", "borrowerEmail": "shevek", "dueDate": "2026-03-24"}`,
			expectedMessage: ledger.ErrInvalidEmail.Error(),
		},
		{
			description:     "due date in the past",
			body:            `{"bookId": "` + book.ID + `", "borrowerName": "Shevek", "borrowerEmail": "shevek@anarres.example", "dueDate": "2026-03-01"}`,
			expectedMessage: ledger.ErrDueDateNotInFuture.Error(),
		},
		{
			description:     "unparsable due date",
			body:            `{"bookId": "` + book.ID + `", "borrowerName": "Shevek", "borrowerEmail": "shevek@anarres.example", "dueDate": "next week"}`,
			expectedMessage: errInvalidDate.Error(),
		},
		{
			description:     "unparsable due date and missing borrower",
			body:            `{"bookId": "` + book.ID + `", "borrowerEmail": "shevek@anarres.example", "dueDate": "next week"}`,
			expectedMessage: ledger.ErrMissingRequiredFields.Error(),
		},
		{
			description:     "unparsable due date and malformed email",
			body:            `{"bookId": "` + book.ID + `", "borrowerName": "Shevek", "borrowerEmail": "shevek", "dueDate": "next week"}`,
			expectedMessage: ledger.ErrInvalidEmail.Error(),
		},
		{
			description:     "unknown book",
			body:            `{"bookId": "no-such-book", "borrowerName": "Shevek", "borrowerEmail": "shevek@anarres.example", "dueDate": "2026-03-24"}`,
			expectedMessage: ledger.ErrBookNotAvailable.Error(),
		},
		{
			description:     "unknown key",
			body:            `{"bookId": "` + book.ID + `", "reader": "Shevek"}`,
			expectedMessage: `body contains unknown key "reader"`,
		},
		{
			description:     "empty body",
			body:            ``,
			expectedMessage: errBodyEmpty.Error(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			rec, body := doRequest(t, app.routes(), http.MethodPost, "/v1/loans", tc.body)

			// assert
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.expectedMessage, body["message"])
		})
	}

	RequireStock(t, ctx, store, book.ID, 1)
}

func Test_WriteJSON_IndentedBodyDecodes(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)
	rec := httptest.NewRecorder()

	// act
	err := app.writeJSON(rec, http.StatusCreated, envelope{"loanId": "loan-1", "nested": envelope{"count": 2}}, nil)

	// assert
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "\n  \"loanId\": \"loan-1\"")

	decoded := make(map[string]any)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "loan-1", decoded["loanId"])
	assert.Equal(t, map[string]any{"count": float64(2)}, decoded["nested"])
}

func Test_ReturnBook_ByPath_WithFineOverride(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	book := GivenBook(t, ctx, store, "The Lathe of Heaven", 1)

	// arrange
	loanID := GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-2*ledger.Day), fixedNow.Add(5*ledger.Day))

	// act
	rec, body := doRequest(t, app.routes(), http.MethodPost, "/v1/loans/"+loanID+"/return", `{"fine": 25, "notes": "cover torn"}`)

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Book returned successfully", body["message"])
	assert.InDelta(t, 25.0, body["fine"], 0.0001)

	loan := RequireLoan(t, ctx, store, loanID)
	assert.Equal(t, ledger.LoanStatusReturned, loan.Status)
	assert.Equal(t, "cover torn", loan.Notes)
	assert.Equal(t, "25", loan.Fine.String())
	RequireStock(t, ctx, store, book.ID, 1)
}

func Test_ReturnBook_ByQuery_SecondReturnIsRejected(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	routes := app.routes()
	book := GivenBook(t, ctx, store, "The Word for World Is Forest", 1)

	// arrange
	loanID := GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-2*ledger.Day), fixedNow.Add(5*ledger.Day))
	rec, _ := doRequest(t, routes, http.MethodPost, "/v1/returns?borrowId="+loanID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// act
	rec, body := doRequest(t, routes, http.MethodPost, "/v1/returns?borrowId="+loanID, "")

	// assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, ledger.ErrLoanAlreadyReturned.Error(), body["message"])
	RequireStock(t, ctx, store, book.ID, 1)
}

func Test_ReturnBook_ByQuery_MissingBorrowID(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodPost, "/v1/returns", "")

	// assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ledger.ErrMissingLoanID.Error(), body["message"])
}

func Test_OverdueLoans_RecalculateThenList(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	routes := app.routes()
	book := GivenBook(t, ctx, store, "Tehanu", 2)

	// arrange
	overdueID := GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-10*ledger.Day), fixedNow.Add(-3*ledger.Day))
	GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-1*ledger.Day), fixedNow.Add(6*ledger.Day))

	// act
	rec, body := doRequest(t, routes, http.MethodPost, "/v1/overdue-loans/recalculate", `{"finePerDay": 10}`)

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Updated 1 overdue loans with a fine of 10.00 per day", body["message"])
	assert.InDelta(t, 1.0, body["updatedCount"], 0.0001)
	assert.InDelta(t, 0.0, body["failedCount"], 0.0001)

	rec, body = doRequest(t, routes, http.MethodGet, "/v1/overdue-loans", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1.0, body["count"], 0.0001)

	loans := body["loans"].([]any)
	require.Len(t, loans, 1)
	overdue := loans[0].(map[string]any)
	assert.Equal(t, overdueID, overdue["id"])
	assert.Equal(t, string(ledger.LoanStatusOverdue), overdue["status"])
	assert.InDelta(t, 3.0, overdue["daysOverdue"], 0.0001)
	assert.Equal(t, "30.00", overdue["fineDisplay"])
}

func Test_OverdueLoans_Recalculate_NegativeRateIsRejected(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodPost, "/v1/overdue-loans/recalculate", `{"finePerDay": -1}`)

	// assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ledger.ErrNegativeFinePerDay.Error(), body["error"])
}

func Test_ListLoans_FiltersByStatus(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	routes := app.routes()
	book := GivenBook(t, ctx, store, "A Wizard of Earthsea", 2)

	// arrange
	returnedID := GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-4*ledger.Day), fixedNow.Add(3*ledger.Day))
	GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-2*ledger.Day), fixedNow.Add(5*ledger.Day))
	rec, _ := doRequest(t, routes, http.MethodPost, "/v1/loans/"+returnedID+"/return", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// act
	rec, body := doRequest(t, routes, http.MethodGet, "/v1/loans?status=returned&bookId="+book.ID, "")

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1.0, body["count"], 0.0001)
	assert.InDelta(t, float64(ledger.DefaultQueryLimit), body["limit"], 0.0001)

	loans := body["loans"].([]any)
	require.Len(t, loans, 1)
	assert.Equal(t, returnedID, loans[0].(map[string]any)["id"])
	assert.NotNil(t, loans[0].(map[string]any)["returnDate"])
}

func Test_ListLoans_UnknownStatusIsRejected(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodGet, "/v1/loans?status=lost", "")

	// assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "lost")
}

func Test_LoanJournal(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	routes := app.routes()
	book := GivenBook(t, ctx, store, "The Tombs of Atuan", 1)

	// arrange
	loanID := GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-2*ledger.Day), fixedNow.Add(5*ledger.Day))
	rec, _ := doRequest(t, routes, http.MethodPost, "/v1/loans/"+loanID+"/return", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// act
	rec, body := doRequest(t, routes, http.MethodGet, "/v1/loans/"+loanID+"/entries", "")

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 2.0, body["count"], 0.0001)

	entries := body["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "BookCopyLent", entries[0].(map[string]any)["entryType"])
	assert.Equal(t, "BookCopyReturned", entries[1].(map[string]any)["entryType"])
}

func Test_LoanJournal_UnknownLoanIsNotFound(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)

	// act
	rec, _ := doRequest(t, app.routes(), http.MethodGet, "/v1/loans/9b2f4a3c-1d7e-4f5a-8c6b-0e1d2c3b4a59/entries", "")

	// assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Stats(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	book := GivenBook(t, ctx, store, "The Farthest Shore", 3)

	// arrange
	GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-10*ledger.Day), fixedNow.Add(-3*ledger.Day))
	GivenBorrowedLoan(t, ctx, store, book.ID, fixedNow.Add(-1*ledger.Day), fixedNow.Add(6*ledger.Day))

	// act
	rec, body := doRequest(t, app.routes(), http.MethodGet, "/v1/stats", "")

	// assert
	require.Equal(t, http.StatusOK, rec.Code)

	stats := body["stats"].(map[string]any)
	assert.InDelta(t, 2.0, stats["totalBorrowed"], 0.0001)
	assert.InDelta(t, 2.0, stats["currentlyBorrowed"], 0.0001)
	assert.InDelta(t, 1.0, stats["overdueBooks"], 0.0001)
	assert.InDelta(t, 1.0, stats["availableBooks"], 0.0001)
}

func Test_Sweeps_ListsManualRun(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)
	routes := app.routes()

	// arrange
	rec, _ := doRequest(t, routes, http.MethodPost, "/v1/overdue-loans/recalculate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// act
	rec, body := doRequest(t, routes, http.MethodGet, "/v1/sweeps", "")

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1.0, body["count"], 0.0001)

	sweeps := body["sweeps"].([]any)
	require.Len(t, sweeps, 1)
	assert.Equal(t, string(ledger.SweepTriggerManual), sweeps[0].(map[string]any)["trigger"])
	assert.InDelta(t, float64(DefaultFinePerDay), sweeps[0].(map[string]any)["finePerDay"], 0.0001)

	scheduler := body["scheduler"].(map[string]any)
	assert.InDelta(t, 1.0, scheduler["manualRuns"], 0.0001)
	assert.InDelta(t, 0.0, scheduler["scheduledRuns"], 0.0001)
}

func Test_ReconcileStock_Repair(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)
	routes := app.routes()

	// arrange
	book := ledger.Book{ID: "drifting-book", Title: "Lavinia", AvailableStock: 1, TotalCopies: 3}
	require.NoError(t, store.PutBook(ctx, book))

	// act
	rec, body := doRequest(t, routes, http.MethodPost, "/v1/admin/reconcile-stock", `{"repair": true}`)

	// assert
	require.Equal(t, http.StatusOK, rec.Code)

	drifts := body["drifts"].([]any)
	require.Len(t, drifts, 1)
	assert.InDelta(t, 3.0, drifts[0].(map[string]any)["expectedStock"], 0.0001)
	assert.Equal(t, []any{book.ID}, body["repaired"])
	assert.Equal(t, []any{}, body["unrepaired"])
	RequireStock(t, ctx, store, book.ID, 3)
}

func Test_PutBook(t *testing.T) {
	// setup
	ctx := context.Background()
	app, store := newTestApplication(t)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodPut, "/v1/admin/books/isbn-9780441478125", `{
		"title": "The Left Hand of Darkness",
		"author": "Ursula K. Le Guin",
		"totalCopies": 4
	}`)

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "isbn-9780441478125", body["book"].(map[string]any)["id"])
	RequireStock(t, ctx, store, "isbn-9780441478125", 4)
}

func Test_PutBook_FailedValidation(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodPut, "/v1/admin/books/b-1", `{"totalCopies": 2, "availableStock": 3}`)

	// assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	problems := body["error"].(map[string]any)
	assert.Equal(t, "must be provided", problems["title"])
	assert.Equal(t, "must not exceed totalCopies", problems["availableStock"])
}

func Test_Routes_NotFoundAndMethodNotAllowed(t *testing.T) {
	// setup
	app, _ := newTestApplication(t)
	routes := app.routes()

	// act
	notFound, _ := doRequest(t, routes, http.MethodGet, "/v1/books", "")
	notAllowed, body := doRequest(t, routes, http.MethodDelete, "/v1/stats", "")

	// assert
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, notAllowed.Code)
	assert.Equal(t, "the DELETE method is not supported for this resource", body["error"])
}

func Test_RateLimit(t *testing.T) {
	// setup
	app, _ := newTestApplication(t, "-limiter-enabled=true", "-limiter-rps=0.001", "-limiter-burst=1")
	routes := app.routes()

	// act
	first, _ := doRequest(t, routes, http.MethodGet, "/v1/healthcheck", "")
	second, body := doRequest(t, routes, http.MethodGet, "/v1/healthcheck", "")

	// assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate limit exceeded", body["error"])
}

func Test_RecoverPanic(t *testing.T) {
	// setup
	logSpy := testdoubles.NewLogHandlerSpy(false)
	app, _ := newTestApplication(t)
	app.logger = slog.New(logSpy)

	handler := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("projection blew up")
	}))

	// act
	rec, body := doRequest(t, handler, http.MethodGet, "/v1/stats", "")

	// assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
	assert.Equal(t, serverErrorMessage, body["error"])
	assert.True(t, logSpy.HasLog(slog.LevelError, "projection blew up"))
}

func Test_ServerFailure_IsNotReportedAsRejection(t *testing.T) {
	// setup
	ctx := context.Background()
	var failReads atomic.Bool
	faultyStore := NewMemStore(t, memengine.WithFaultInjector(func(op memengine.Operation, _ string) error {
		if op == memengine.OpGetBook && failReads.Load() {
			return assert.AnError
		}
		return nil
	}))
	app, _ := newTestApplicationWithStore(t, faultyStore)
	book := GivenBook(t, ctx, faultyStore, "Four Ways to Forgiveness", 1)
	failReads.Store(true)

	// act
	rec, body := doRequest(t, app.routes(), http.MethodPost, "/v1/loans", `{
		"bookId": "`+book.ID+`",
		"borrowerName": "Yoss",
		"borrowerEmail": "yoss@werel.example",
		"dueDate": "2026-03-24"
	}`)

	// assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, serverErrorMessage, body["message"])

	failReads.Store(false)
	RequireStock(t, ctx, faultyStore, book.ID, 1)
}

// Test helper functions

func newTestApplication(t *testing.T, extraFlags ...string) (*applicationDependencies, *memengine.Store) {
	t.Helper()

	return newTestApplicationWithStore(t, NewMemStore(t), extraFlags...)
}

func newTestApplicationWithStore(
	t *testing.T,
	store *memengine.Store,
	extraFlags ...string,
) (*applicationDependencies, *memengine.Store) {

	t.Helper()

	flags := append([]string{"-store=memory", "-sweep-disabled", "-limiter-enabled=false"}, extraFlags...)
	cfg, err := parseFlags(flags)
	require.NoError(t, err)

	logger := slog.New(testdoubles.NewLogHandlerSpy(false))

	app, err := newApplication(cfg, logger, store, &telemetry{}, func() time.Time { return fixedNow })
	require.NoError(t, err)
	t.Cleanup(func() { close(app.done) })

	return app, store
}

func doRequest(
	t *testing.T,
	handler http.Handler,
	method string,
	target string,
	body string,
) (*httptest.ResponseRecorder, map[string]any) {

	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	decoded := make(map[string]any)
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}

	return rec, decoded
}

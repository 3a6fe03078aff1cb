package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/borrowbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/reconcilestock"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/command/returnbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/lendingstats"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/loanjournal"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/loansearch"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/overdueloans"
	"github.com/AntonStoeckl/lending-ledger-go/lending/features/query/sweephistory"
)

const defaultSweepHistoryLimit = 20

func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	data := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"version":     appVersion,
			"store":       app.config.store,
		},
	}

	if err := app.writeJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) borrowBookHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		BookID        string `json:"bookId"`
		BorrowerName  string `json:"borrowerName"`
		BorrowerEmail string `json:"borrowerEmail"`
		BorrowerPhone string `json:"borrowerPhone"`
		DueDate       string `json:"dueDate"`
		Notes         string `json:"notes"`
	}

	if err := app.readJSON(w, r, &input); err != nil {
		app.outcomeResponse(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	now := app.clock()
	borrower := borrowbook.Borrower{Name: input.BorrowerName, Email: input.BorrowerEmail, Phone: input.BorrowerPhone}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		// Missing fields and a malformed email outrank an unreadable due date.
		placeholder := borrowbook.BuildCommand(uuid.Nil, input.BookID, borrower, now.Add(ledger.Day), input.Notes, now)
		if rejection := borrowbook.Validate(placeholder); rejection != nil {
			app.failedOperationResponse(w, r, rejection)
			return
		}

		app.outcomeResponse(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	command := borrowbook.BuildCommand(uuid.New(), input.BookID, borrower, dueDate, input.Notes, now)

	result, err := app.handlers.borrow.Handle(r.Context(), command)
	if err != nil {
		app.failedOperationResponse(w, r, err)
		return
	}

	app.outcomeResponse(w, r, http.StatusCreated, "Book borrowed successfully", envelope{"loanId": result.LoanID})
}

func (app *applicationDependencies) returnBookHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := app.readIDParam(r)
	if err != nil {
		app.outcomeResponse(w, r, http.StatusBadRequest, ledger.ErrMissingLoanID.Error(), nil)
		return
	}

	app.returnBook(w, r, loanID)
}

// returnBookByQueryHandler serves clients that pass the loan id as ?borrowId=.
func (app *applicationDependencies) returnBookByQueryHandler(w http.ResponseWriter, r *http.Request) {
	app.returnBook(w, r, app.readString(r.URL.Query(), "borrowId", ""))
}

func (app *applicationDependencies) returnBook(w http.ResponseWriter, r *http.Request, loanID string) {
	var input struct {
		Fine  *decimal.Decimal `json:"fine"`
		Notes *string          `json:"notes"`
	}

	if err := app.readOptionalJSON(w, r, &input); err != nil {
		app.outcomeResponse(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	command := returnbook.BuildCommand(loanID, input.Fine, input.Notes, app.clock())

	result, err := app.handlers.giveBack.Handle(r.Context(), command)
	if err != nil {
		app.failedOperationResponse(w, r, err)
		return
	}

	app.outcomeResponse(w, r, http.StatusOK, "Book returned successfully", envelope{
		"loanId":     result.Returned.LoanID,
		"fine":       result.Returned.Fine,
		"returnDate": command.OccurredAt,
	})
}

func (app *applicationDependencies) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	var statuses []ledger.LoanStatus
	for _, value := range app.readCSV(qs, "status") {
		status, err := ledger.ParseLoanStatus(value)
		if err != nil {
			app.badRequestResponse(w, r, err.Error())
			return
		}
		statuses = append(statuses, status)
	}

	query := loansearch.BuildQuery(
		app.readString(qs, "search", ""),
		app.readInt(qs, "limit", ledger.DefaultQueryLimit),
		statuses...,
	).
		ForBook(qs.Get("bookId")).
		ForBorrowerEmail(qs.Get("borrowerEmail"))

	result, err := app.handlers.search.Handle(r.Context(), query)
	if err != nil {
		app.failedQueryResponse(w, r, err)
		return
	}

	data := envelope{"loans": toLoanResponses(result.Loans), "count": result.Count, "limit": result.Limit}
	if err = app.writeJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) loanJournalHandler(w http.ResponseWriter, r *http.Request) {
	loanID, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	result, err := app.handlers.journal.Handle(r.Context(), loanjournal.BuildQuery(loanID))
	if err != nil {
		app.failedQueryResponse(w, r, err)
		return
	}

	if result.Count == 0 {
		app.notFoundResponse(w, r)
		return
	}

	data := envelope{"loanId": result.LoanID, "entries": toJournalEntryResponses(result.Entries), "count": result.Count}
	if err = app.writeJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) listOverdueLoansHandler(w http.ResponseWriter, r *http.Request) {
	result, err := app.handlers.overdue.Handle(r.Context(), overdueloans.BuildQuery(app.clock()))
	if err != nil {
		app.failedQueryResponse(w, r, err)
		return
	}

	data := envelope{"loans": toOverdueLoanResponses(result.Loans), "count": result.Count, "asOf": result.AsOf}
	if err = app.writeJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) recalculateOverdueHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FinePerDay *decimal.Decimal `json:"finePerDay"`
	}

	if err := app.readOptionalJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	result, err := app.scheduler.Trigger(r.Context(), input.FinePerDay)
	if err != nil {
		app.failedQueryResponse(w, r, err)
		return
	}

	data := envelope{
		"message":      fmt.Sprintf("Updated %d overdue loans with a fine of %s per day", result.UpdatedCount, result.FinePerDay.StringFixed(2)),
		"updatedCount": result.UpdatedCount,
		"failedCount":  result.FailedCount,
		"finePerDay":   result.FinePerDay,
		"timestamp":    result.RanAt,
	}

	if err = app.writeJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) showStatsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := app.handlers.stats.Handle(r.Context(), lendingstats.BuildQuery(app.clock()))
	if err != nil {
		app.failedQueryResponse(w, r, err)
		return
	}

	if err = app.writeJSON(w, http.StatusOK, envelope{"stats": toStatsResponse(result)}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) listSweepsHandler(w http.ResponseWriter, r *http.Request) {
	limit := app.readInt(r.URL.Query(), "limit", defaultSweepHistoryLimit)

	result, err := app.handlers.sweeps.Handle(r.Context(), sweephistory.BuildQuery(limit))
	if err != nil {
		app.failedQueryResponse(w, r, err)
		return
	}

	stats := app.scheduler.Stats()
	data := envelope{
		"sweeps": toSweepRunResponses(result.Runs),
		"count":  result.Count,
		"scheduler": envelope{
			"finePerDay":    app.scheduler.FinePerDay(),
			"scheduledRuns": stats.ScheduledRuns,
			"manualRuns":    stats.ManualRuns,
			"failedRuns":    stats.FailedRuns,
			"lastRunAt":     optionalTime(stats.LastRunAt),
			"nextRunAt":     optionalTime(stats.NextRunAt),
		},
	}

	if err = app.writeJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) reconcileStockHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Repair bool `json:"repair"`
	}

	if err := app.readOptionalJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	result, err := app.handlers.reconcile.Handle(r.Context(), reconcilestock.BuildCommand(input.Repair, app.clock()))
	if err != nil {
		app.failedQueryResponse(w, r, err)
		return
	}

	data := envelope{
		"drifts":     toStockDriftResponses(result.Drifts),
		"repaired":   nonNil(result.Repaired),
		"unrepaired": nonNil(result.Unrepaired),
	}

	if err = app.writeJSON(w, http.StatusOK, data, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// putBookHandler is the seam through which the catalog provisions a book and its stock.
func (app *applicationDependencies) putBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Title          string `json:"title"`
		Author         string `json:"author"`
		TotalCopies    *int   `json:"totalCopies"`
		AvailableStock *int   `json:"availableStock"`
	}

	if err = app.readJSON(w, r, &input); err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	book := ledger.Book{
		ID:          bookID,
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		TotalCopies: ledger.DefaultBookStock,
	}

	if input.TotalCopies != nil {
		book.TotalCopies = *input.TotalCopies
	}

	book.AvailableStock = book.TotalCopies
	if input.AvailableStock != nil {
		book.AvailableStock = *input.AvailableStock
	}

	if problems := validateBook(book); len(problems) > 0 {
		app.failedValidationResponse(w, r, problems)
		return
	}

	if err = app.store.PutBook(r.Context(), book); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if err = app.writeJSON(w, http.StatusOK, envelope{"book": toBookResponse(book)}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func validateBook(book ledger.Book) map[string]string {
	problems := make(map[string]string)

	if book.Title == "" {
		problems["title"] = "must be provided"
	}

	if book.TotalCopies < 0 {
		problems["totalCopies"] = "must not be negative"
	}

	if book.AvailableStock < 0 {
		problems["availableStock"] = "must not be negative"
	} else if book.AvailableStock > book.TotalCopies {
		problems["availableStock"] = "must not exceed totalCopies"
	}

	return problems
}

func nonNil(ids []ledger.BookID) []ledger.BookID {
	if ids == nil {
		return []ledger.BookID{}
	}

	return ids
}

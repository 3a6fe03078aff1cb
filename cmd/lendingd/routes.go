package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodPost, "/v1/loans", app.borrowBookHandler)
	router.HandlerFunc(http.MethodGet, "/v1/loans", app.listLoansHandler)
	router.HandlerFunc(http.MethodPost, "/v1/loans/:id/return", app.returnBookHandler)
	router.HandlerFunc(http.MethodGet, "/v1/loans/:id/entries", app.loanJournalHandler)
	router.HandlerFunc(http.MethodPost, "/v1/returns", app.returnBookByQueryHandler)

	router.HandlerFunc(http.MethodGet, "/v1/overdue-loans", app.listOverdueLoansHandler)
	router.HandlerFunc(http.MethodPost, "/v1/overdue-loans/recalculate", app.recalculateOverdueHandler)

	router.HandlerFunc(http.MethodGet, "/v1/stats", app.showStatsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/sweeps", app.listSweepsHandler)

	router.HandlerFunc(http.MethodPost, "/v1/admin/reconcile-stock", app.reconcileStockHandler)
	router.HandlerFunc(http.MethodPut, "/v1/admin/books/:id", app.putBookHandler)

	return app.recoverPanic(app.rateLimit(router))
}

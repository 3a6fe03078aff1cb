package main

import (
	"fmt"
	"net/http"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const serverErrorMessage = "the server encountered a problem and could not process your request"

func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
}

func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	if err := app.writeJSON(w, status, envelope{"error": message}, nil); err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// outcomeResponse writes the {success, message} shape the lending operations answer with.
func (app *applicationDependencies) outcomeResponse(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	extra envelope,
) {

	body := envelope{"success": status < http.StatusBadRequest, "message": message}
	for key, value := range extra {
		body[key] = value
	}

	if err := app.writeJSON(w, status, body, nil); err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// failedOperationResponse maps a handler error: rejections are the caller's fault, everything else is ours.
func (app *applicationDependencies) failedOperationResponse(w http.ResponseWriter, r *http.Request, err error) {
	if rejection, ok := ledger.AsRejection(err); ok {
		app.outcomeResponse(w, r, http.StatusBadRequest, rejection.Message, nil)
		return
	}

	app.logError(r, err)
	app.outcomeResponse(w, r, http.StatusInternalServerError, serverErrorMessage, nil)
}

// failedQueryResponse is failedOperationResponse for read endpoints, which use the error envelope.
func (app *applicationDependencies) failedQueryResponse(w http.ResponseWriter, r *http.Request, err error) {
	if rejection, ok := ledger.AsRejection(err); ok {
		app.badRequestResponse(w, r, rejection.Message)
		return
	}

	app.serverErrorResponse(w, r, err)
}

func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, serverErrorMessage)
}

func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

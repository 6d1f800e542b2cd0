package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tkivisto/legalintake/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri)
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields. It
// writes the client error response itself and reports success to the caller.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		app.logger.Debug("malformed request body", errors.SlogError(err))
		app.clientError(w, r, http.StatusBadRequest)
		return false
	}
	return true
}

// caseIDParam parses the {caseID} path value. It writes the 404 itself when
// the value is not a valid identifier.
func (app *application) caseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("caseID"), 10, 64)
	if err != nil || id < 1 {
		app.notFound(w, r)
		return 0, false
	}
	return id, true
}

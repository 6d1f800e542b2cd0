package main

import (
	"net/http"

	"github.com/justinas/nosurf"
)

// showSession returns the current lawyer display name and the CSRF token
// required for mutating dashboard requests.
func (app *application) showSession(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Name      string `json:"name"`
		CSRFToken string `json:"csrfToken"`
	}{
		Name:      app.lawyerName(r.Context()),
		CSRFToken: nosurf.Token(r),
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

// startSession attaches a lawyer display name to the session. It stands in
// for a real authentication provider, which is out of scope; audit entries
// and review records use this name as the actor label.
func (app *application) startSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name string `json:"name"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}
	if request.Name == "" {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}

	app.sessionManager.Put(r.Context(), lawyerNameSessionKey, request.Name)
	w.WriteHeader(http.StatusNoContent)
}

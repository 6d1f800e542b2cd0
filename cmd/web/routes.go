package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, noSurf)

	mux.HandleFunc("GET /api/healthy", app.healthy)

	// Lawyer dashboard API. Mutations require the CSRF token handed out by
	// GET /api/session.
	mux.Handle("GET /api/session", session.ThenFunc(app.showSession))
	mux.Handle("POST /api/session", session.ThenFunc(app.startSession))
	mux.Handle("POST /api/cases", session.ThenFunc(app.createCase))
	mux.Handle("GET /api/cases", session.ThenFunc(app.listCases))
	mux.Handle("GET /api/cases/{caseID}", session.ThenFunc(app.showCase))
	mux.Handle("POST /api/cases/{caseID}/analysis", session.ThenFunc(app.generateAnalysis))
	mux.Handle("PUT /api/cases/{caseID}/summary", session.ThenFunc(app.updateSummary))
	mux.Handle("PUT /api/cases/{caseID}/notes", session.ThenFunc(app.updateNotes))
	mux.Handle("POST /api/cases/{caseID}/review", session.ThenFunc(app.completeReview))
	mux.Handle("GET /api/cases/{caseID}/audit", session.ThenFunc(app.auditTrail))

	// Client intake chat, authenticated by the per-case access token in the
	// URL and exempted from CSRF below.
	mux.Handle("GET /api/intake/{token}", session.ThenFunc(app.showIntake))
	mux.Handle("POST /api/intake/{token}/messages", session.ThenFunc(app.intakeMessage))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}

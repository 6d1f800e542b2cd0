package main

import (
	"log/slog"
	"net/http"

	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
	"github.com/tkivisto/legalintake/internal/repositories"
)

// intakeResponse is the client-facing view of a case: the transcript and
// status only, none of the lawyer-side fields.
type intakeResponse struct {
	ClientName  string            `json:"clientName"`
	Status      models.CaseStatus `json:"status"`
	ChatHistory models.Transcript `json:"chatHistory"`
}

func (app *application) intakeCase(w http.ResponseWriter, r *http.Request) (*models.CaseRecord, bool) {
	token := r.PathValue("token")
	record, err := app.cases.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, repositories.ErrNoCase) {
			app.notFound(w, r)
			return nil, false
		}
		app.serverError(w, r, errors.Wrap(err, "get case by token"))
		return nil, false
	}
	return record, true
}

func (app *application) showIntake(w http.ResponseWriter, r *http.Request) {
	record, ok := app.intakeCase(w, r)
	if !ok {
		return
	}

	chatHistory := record.ChatHistory
	if chatHistory == nil {
		chatHistory = models.Transcript{}
	}
	app.writeJSON(w, r, http.StatusOK, intakeResponse{
		ClientName:  record.ClientName,
		Status:      record.Status,
		ChatHistory: chatHistory,
	})
}

// intakeMessage advances the interview by one turn. Turns for the same case
// are single-flight: a second submission while one is in flight gets a 409
// instead of interleaving transcript writes.
func (app *application) intakeMessage(w http.ResponseWriter, r *http.Request) {
	record, ok := app.intakeCase(w, r)
	if !ok {
		return
	}

	var request struct {
		Message string `json:"message"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}
	if request.Message == "" {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}

	if !app.turnGuard.TryAcquire(record.ID) {
		app.clientError(w, r, http.StatusConflict)
		return
	}
	defer app.turnGuard.Release(record.ID)

	ctx := r.Context()
	turn := app.controller.Advance(ctx, record.ChatHistory, request.Message)

	if err := app.cases.AppendTurns(ctx, record.ID, turn.Transcript); err != nil {
		app.serverError(w, r, errors.Wrap(err, "append turns"))
		return
	}

	if len(turn.Witnesses) > 0 || len(turn.Details) > 0 {
		if err := app.cases.SaveFacts(ctx, record.ID, turn.Witnesses, turn.Details); err != nil {
			app.serverError(w, r, errors.Wrap(err, "save facts"))
			return
		}
		if err := app.auditLogs.Append(ctx, record.ID, models.AuditActionFactsSaved,
			"Interview saved structured case facts", "AI Assistant"); err != nil {
			// The turn already succeeded; losing one audit entry is not
			// worth failing the client's message.
			app.logger.LogAttrs(ctx, slog.LevelError, "audit facts saved", errors.SlogError(err))
		}
	}

	app.writeJSON(w, r, http.StatusOK, turn.Message)
}

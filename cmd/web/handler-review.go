package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tkivisto/legalintake/internal/errors"
	"github.com/tkivisto/legalintake/internal/models"
	"github.com/tkivisto/legalintake/internal/repositories"
)

// generateAnalysis runs the case-readiness extractor over the case's full
// transcript and stores the report. The extractor is total, so the lawyer
// always gets a renderable report back, possibly the degraded one.
func (app *application) generateAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := app.caseIDParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	record, err := app.cases.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNoCase) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "get case"))
		return
	}

	report := app.extractor.Analyze(ctx, record.ChatHistory)

	if err = app.cases.SetAnalysis(ctx, id, report); err != nil {
		app.serverError(w, r, errors.Wrap(err, "set analysis"))
		return
	}
	if err = app.auditLogs.Append(ctx, id, models.AuditActionAnalysis,
		"Generated case readiness report", "AI Assistant"); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "audit analysis", errors.SlogError(err))
	}

	app.writeJSON(w, r, http.StatusOK, report)
}

func (app *application) updateSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := app.caseIDParam(w, r)
	if !ok {
		return
	}

	var request struct {
		Summary string `json:"summary"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}

	ctx := r.Context()
	if err := app.cases.UpdateSummary(ctx, id, request.Summary); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNoCase):
			app.notFound(w, r)
		case errors.Is(err, repositories.ErrNoAnalysis):
			app.clientError(w, r, http.StatusConflict)
		default:
			app.serverError(w, r, errors.Wrap(err, "update summary"))
		}
		return
	}

	if err := app.auditLogs.Append(ctx, id, models.AuditActionSummaryEdited,
		"Lawyer updated the executive summary", app.lawyerName(ctx)); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "audit summary edit", errors.SlogError(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) updateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := app.caseIDParam(w, r)
	if !ok {
		return
	}

	var request struct {
		Notes string `json:"notes"`
	}
	if !app.decodeJSON(w, r, &request) {
		return
	}
	if request.Notes == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx := r.Context()
	if err := app.cases.SetInternalNotes(ctx, id, request.Notes); err != nil {
		if errors.Is(err, repositories.ErrNoCase) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "set internal notes"))
		return
	}

	if err := app.auditLogs.Append(ctx, id, models.AuditActionNoteAdded,
		"Internal note updated", app.lawyerName(ctx)); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "audit note", errors.SlogError(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) completeReview(w http.ResponseWriter, r *http.Request) {
	id, ok := app.caseIDParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	reviewer := app.lawyerName(ctx)
	if err := app.cases.CompleteReview(ctx, id, reviewer); err != nil {
		if errors.Is(err, repositories.ErrNoCase) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "complete review"))
		return
	}

	if err := app.auditLogs.Append(ctx, id, models.AuditActionReviewCompleted,
		"Case marked as reviewed", reviewer); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "audit review", errors.SlogError(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

type auditEntryResponse struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"createdAt"`
}

func (app *application) auditTrail(w http.ResponseWriter, r *http.Request) {
	id, ok := app.caseIDParam(w, r)
	if !ok {
		return
	}

	entries, err := app.auditLogs.List(r.Context(), id)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list audit trail"))
		return
	}

	response := make([]auditEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = auditEntryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			Details:   entry.Details,
			Actor:     entry.Actor,
			CreatedAt: entry.CreatedAt,
		}
	}
	app.writeJSON(w, r, http.StatusOK, response)
}
